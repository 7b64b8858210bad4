package client

import "github.com/PADAS/gundi-integration-onyesha/isotime"

// Device is one tracker registered on the Onyesha account.
type Device struct {
	NDeviceID    string       `json:"nDeviceID"`
	StrSpecialID string       `json:"strSpecialID"`
	DtCreated    isotime.Time `json:"dtCreated"`
	StrSatellite string       `json:"strSatellite"`
}

// Position is one fix reported by a device.
type Position struct {
	ChannelStatus   string       `json:"ChannelStatus"`
	UploadTimeStamp isotime.Time `json:"UploadTimeStamp"`
	Latitude        float64      `json:"Latitude"`
	Longitude       float64      `json:"Longitude"`
	Altitude        float64      `json:"Altitude"`
	ECEFx           int64        `json:"ECEFx"`
	ECEFy           int64        `json:"ECEFy"`
	ECEFz           int64        `json:"ECEFz"`
	RxStatus        int          `json:"RxStatus"`
	PDOP            float64      `json:"PDOP"`
	MainV           float64      `json:"MainV"`
	BkUpV           float64      `json:"BkUpV"`
	Temperature     float64      `json:"Temperature"`
	FixDuration     int          `json:"FixDuration"`
	BHasTempVoltage bool         `json:"bHasTempVoltage"`
	DevName         string       `json:"DevName"`
	DeltaTime       int          `json:"DeltaTime"`
	FixType         int          `json:"FixType"`
	CEPRadius       int          `json:"CEPRadius"`
	CRC             int          `json:"CRC"`
	DeviceID        int64        `json:"DeviceID"`
	RecDateTime     isotime.Time `json:"RecDateTime"`
}

// tokenResponse is the body of the token exchange.
type tokenResponse struct {
	GrantType string `json:"grant_type"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in,omitempty"`
}

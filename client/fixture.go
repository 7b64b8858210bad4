package client

import (
	"context"
	"slices"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/PADAS/gundi-integration-onyesha/isotime"
)

// Fixture serves a fixed Iridium device fleet and a handful of positions
// without network access. It has the same read methods as Client.
type Fixture struct {
	devices   []Device
	positions []Position
}

// NewFixture returns a Fixture loaded with the sample fleet.
func NewFixture() *Fixture {
	return &Fixture{devices: fixtureDevices(), positions: fixturePositions()}
}

// NewFixtureWith returns a Fixture serving the given data.
func NewFixtureWith(devices []Device, positions []Position) *Fixture {
	return &Fixture{devices: slices.Clone(devices), positions: slices.Clone(positions)}
}

// Token returns a static token.
func (f *Fixture) Token(ctx context.Context) (*oauth2.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: "dummy_token", TokenType: "token"}, nil
}

// Devices returns the fleet.
func (f *Fixture) Devices(ctx context.Context) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(f.devices), nil
}

// Positions returns the positions of deviceID recorded after since.
func (f *Fixture) Positions(ctx context.Context, deviceID string, since time.Time) ([]Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := strconv.ParseInt(deviceID, 10, 64)
	if err != nil {
		return nil, nil
	}
	var out []Position
	for _, p := range f.positions {
		if p.DeviceID == n && p.RecDateTime.After(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

// PositionsFrom ignores path and behaves like Positions.
func (f *Fixture) PositionsFrom(ctx context.Context, _, deviceID string, since time.Time) ([]Position, error) {
	return f.Positions(ctx, deviceID, since)
}

func at(year int, month time.Month, day, hour, minute, sec, nsec int) isotime.Time {
	return isotime.Time{Time: time.Date(year, month, day, hour, minute, sec, nsec, time.UTC)}
}

func fixtureDevices() []Device {
	return []Device{
		{NDeviceID: "89222", StrSpecialID: "300434066112120", DtCreated: at(2023, 1, 3, 16, 5, 56, 120000000), StrSatellite: "Iridium"},
		{NDeviceID: "150167", StrSpecialID: "300434063388110", DtCreated: at(2022, 2, 23, 11, 49, 37, 350000000), StrSatellite: "Iridium"},
		{NDeviceID: "150181", StrSpecialID: "300434063383130", DtCreated: at(2023, 1, 3, 16, 15, 31, 783000000), StrSatellite: "Iridium"},
		{NDeviceID: "150188", StrSpecialID: "300434063387100", DtCreated: at(2023, 1, 3, 16, 15, 31, 847000000), StrSatellite: "Iridium"},
		{NDeviceID: "150705", StrSpecialID: "300434066467530", DtCreated: at(2022, 6, 16, 13, 41, 21, 307000000), StrSatellite: "Iridium"},
		{NDeviceID: "150706", StrSpecialID: "300434066464540", DtCreated: at(2022, 6, 16, 13, 41, 21, 323000000), StrSatellite: "Iridium"},
		{NDeviceID: "150707", StrSpecialID: "300434066461470", DtCreated: at(2022, 6, 16, 13, 41, 21, 323000000), StrSatellite: "Iridium"},
		{NDeviceID: "150708", StrSpecialID: "300434066463540", DtCreated: at(2022, 6, 16, 13, 41, 21, 340000000), StrSatellite: "Iridium"},
		{NDeviceID: "150709", StrSpecialID: "300434066465530", DtCreated: at(2022, 6, 16, 13, 41, 21, 340000000), StrSatellite: "Iridium"},
		{NDeviceID: "150710", StrSpecialID: "300434066465520", DtCreated: at(2022, 6, 16, 13, 41, 21, 353000000), StrSatellite: "Iridium"},
		{NDeviceID: "150711", StrSpecialID: "300434066468520", DtCreated: at(2022, 6, 16, 13, 41, 21, 370000000), StrSatellite: "Iridium"},
		{NDeviceID: "150712", StrSpecialID: "300434066465560", DtCreated: at(2022, 6, 16, 13, 41, 21, 370000000), StrSatellite: "Iridium"},
		{NDeviceID: "150713", StrSpecialID: "300434066462530", DtCreated: at(2022, 6, 16, 13, 41, 21, 387000000), StrSatellite: "Iridium"},
		{NDeviceID: "150714", StrSpecialID: "300434066461530", DtCreated: at(2022, 6, 16, 13, 41, 21, 387000000), StrSatellite: "Iridium"},
		{NDeviceID: "152770", StrSpecialID: "300434067188300", DtCreated: at(2024, 9, 24, 14, 39, 25, 223000000), StrSatellite: "Iridium"},
		{NDeviceID: "152771", StrSpecialID: "300434067187300", DtCreated: at(2024, 9, 24, 14, 39, 25, 423000000), StrSatellite: "Iridium"},
		{NDeviceID: "152772", StrSpecialID: "300434067180330", DtCreated: at(2024, 9, 24, 14, 39, 25, 457000000), StrSatellite: "Iridium"},
		{NDeviceID: "155886", StrSpecialID: "300434068741530", DtCreated: at(2024, 3, 7, 15, 2, 58, 413000000), StrSatellite: "Iridium"},
		{NDeviceID: "155887", StrSpecialID: "300434068747510", DtCreated: at(2024, 3, 7, 15, 2, 58, 443000000), StrSatellite: "Iridium"},
		{NDeviceID: "155888", StrSpecialID: "300434068740530", DtCreated: at(2024, 3, 7, 15, 2, 58, 477000000), StrSatellite: "Iridium"},
		{NDeviceID: "155889", StrSpecialID: "300434068744540", DtCreated: at(2024, 3, 7, 15, 2, 58, 507000000), StrSatellite: "Iridium"},
		{NDeviceID: "155890", StrSpecialID: "300434068749510", DtCreated: at(2024, 3, 7, 15, 2, 58, 537000000), StrSatellite: "Iridium"},
		{NDeviceID: "156639", StrSpecialID: "301434060726110", DtCreated: at(2024, 11, 6, 9, 1, 51, 210000000), StrSatellite: "Iridium"},
		{NDeviceID: "156950", StrSpecialID: "301434060552790", DtCreated: at(2024, 11, 6, 9, 1, 51, 223000000), StrSatellite: "Iridium"},
	}
}

func fixturePositions() []Position {
	return []Position{
		{DeviceID: 156950, Latitude: -22.688246, Longitude: -72.432657, RecDateTime: at(2023, 1, 3, 16, 5, 56, 120000000)},
		{DeviceID: 156639, Latitude: -11.553351, Longitude: -22.765566, RecDateTime: at(2023, 1, 3, 16, 5, 56, 120000000)},
		{DeviceID: 155890, Latitude: -51.445334, Longitude: -34.667656, RecDateTime: at(2023, 1, 3, 16, 5, 56, 120000000)},
		{DeviceID: 155886, Latitude: -54.688246, Longitude: -54.704450, RecDateTime: at(2023, 1, 3, 16, 5, 56, 120000000)},
		{DeviceID: 152770, Latitude: -14.543344, Longitude: -45.321678, RecDateTime: at(2023, 1, 3, 16, 5, 56, 120000000)},
		{DeviceID: 152771, Latitude: -61.123322, Longitude: -72.645234, RecDateTime: at(2023, 1, 3, 16, 5, 56, 120000000)},
		{DeviceID: 152772, Latitude: -11.543345, Longitude: -77.123986, RecDateTime: at(2024, 11, 6, 9, 1, 51, 223000000)},
	}
}

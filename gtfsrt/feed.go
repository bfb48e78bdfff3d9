package gtfsrt

import (
	"fmt"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/navengine/fixstream"
)

// DecodeVehicleFix parses a vehicle positions feed and returns the fix of
// vehicleID. The id is matched against the vehicle descriptor first and the
// trip id second. An empty vehicleID selects the first positioned vehicle.
// ok is false when the feed carries no matching position.
func DecodeVehicleFix(data []byte, vehicleID string) (fix fixstream.PositionFix, ok bool, err error) {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(data, &fm); err != nil {
		return fixstream.PositionFix{}, false, fmt.Errorf("failed to parse vehicle positions: %w", err)
	}

	var headerTS uint64
	if fm.Header != nil && fm.Header.Timestamp != nil {
		headerTS = *fm.Header.Timestamp
	}

	for _, e := range fm.Entity {
		vp := e.Vehicle
		if vp == nil || vp.Position == nil {
			continue
		}
		if vehicleID != "" && !matchesVehicle(vp, vehicleID) {
			continue
		}
		return toFix(vp, headerTS), true, nil
	}
	return fixstream.PositionFix{}, false, nil
}

func matchesVehicle(vp *gtfsrtpb.VehiclePosition, id string) bool {
	if vp.Vehicle != nil && vp.Vehicle.Id != nil && *vp.Vehicle.Id == id {
		return true
	}
	return vp.Trip != nil && vp.Trip.TripId != nil && *vp.Trip.TripId == id
}

func toFix(vp *gtfsrtpb.VehiclePosition, headerTS uint64) fixstream.PositionFix {
	pos := vp.Position
	fix := fixstream.PositionFix{
		Latitude:  float64(pos.GetLatitude()),
		Longitude: float64(pos.GetLongitude()),
	}
	if pos.Bearing != nil {
		fix.Heading = fixstream.Float(float64(*pos.Bearing))
	}
	if pos.Speed != nil {
		fix.Speed = fixstream.Float(float64(*pos.Speed))
	}

	// Vehicle timestamp wins over the feed header
	ts := headerTS
	if vp.Timestamp != nil {
		ts = *vp.Timestamp
	}
	if ts > 0 {
		fix.Timestamp = time.Unix(int64(ts), 0)
	}
	return fix
}

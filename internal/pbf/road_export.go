package pbf

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/natevvv/osm-traffic-routing/pkg/road"
)

func ExportRoadJson(roads []*road.Segment, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(roads)
}

func ImportRoadJson(filename string) ([]*road.Segment, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var roads []*road.Segment
	if err := json.Unmarshal(bytes, &roads); err != nil {
		return nil, fmt.Errorf("reading roads from %v: %w", filename, err)
	}
	return roads, nil
}

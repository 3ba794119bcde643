package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/twiddle/internal/dynamo"
)

type SampleData struct {
	Step        int     `json:"step"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Orientation float64 `json:"orientation"`
	CTE         float64 `json:"cte"`
	SteeringDeg float64 `json:"steering_deg"`
}

type TrajectoryData struct {
	Gains   [3]float64         `json:"gains"`
	Cost    float64            `json:"cost"`
	Warmup  int                `json:"warmup"`
	Steps   int                `json:"steps"`
	Initial SampleData         `json:"initial"`
	Samples []SampleData       `json:"samples"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

func toDegrees(rad float64) float64 { return rad / math.Pi * 180.0 }

func NewTrajectoryData(tr *dynamo.Trajectory) TrajectoryData {
	data := TrajectoryData{
		Gains:  tr.Gains,
		Cost:   tr.Cost,
		Warmup: tr.Warmup,
		Steps:  len(tr.Samples),
		Initial: SampleData{
			Step:        -1,
			X:           tr.Initial.X,
			Y:           tr.Initial.Y,
			Orientation: tr.Initial.Orientation,
			CTE:         tr.Initial.Y,
		},
		Samples: make([]SampleData, len(tr.Samples)),
		Metrics: tr.Metrics,
	}
	for i, s := range tr.Samples {
		data.Samples[i] = SampleData{
			Step:        s.Step,
			X:           s.Vehicle.X,
			Y:           s.Vehicle.Y,
			Orientation: s.Vehicle.Orientation,
			CTE:         s.CTE,
			SteeringDeg: toDegrees(s.Steering),
		}
	}
	return data
}

func WriteJSON(w io.Writer, tr *dynamo.Trajectory) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewTrajectoryData(tr))
}

var csvHeader = []string{"step", "x", "y", "orientation", "cte", "steering_deg"}

// WriteCSV writes one row per step; positions are after the move.
func WriteCSV(w io.Writer, tr *dynamo.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, s := range tr.Samples {
		row := []string{
			strconv.Itoa(s.Step),
			f(s.Vehicle.X),
			f(s.Vehicle.Y),
			f(s.Vehicle.Orientation),
			f(s.CTE),
			f(toDegrees(s.Steering)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package validate

import (
	"math"

	"github.com/piwi3910/partcam/internal/gcode"
	"github.com/piwi3910/partcam/internal/machine"
)

// CheckGcode re-parses a rendered program and checks every commanded
// coordinate against the travel envelope [-travel, +travel] per axis.
// Defense in depth: synthesis can introduce rapids beyond the raw part
// envelope, so the rendered text is the authority. At most one finding
// per axis is reported, carrying the worst excursion.
func CheckGcode(program string, info machine.MachineInfo) []Error {
	type worst struct {
		value float64
		line  int
		hit   bool
	}
	limits := []struct {
		axis  string
		limit float64
	}{
		{"X", info.TravelX},
		{"Y", info.TravelY},
		{"Z", info.TravelZ},
	}
	excursions := make([]worst, len(limits))

	record := func(i int, v float64, line int) {
		if math.Abs(v) <= limits[i].limit {
			return
		}
		if !excursions[i].hit || math.Abs(v) > math.Abs(excursions[i].value) {
			excursions[i] = worst{value: v, line: line, hit: true}
		}
	}

	for _, mv := range gcode.ParseProgram(program) {
		record(0, mv.ToX, mv.Line)
		record(1, mv.ToY, mv.Line)
		record(2, mv.ToZ, mv.Line)
	}

	var errs []Error
	for i, ex := range excursions {
		if !ex.hit {
			continue
		}
		errs = append(errs, GcodeBoundsExceeded{
			Axis:  limits[i].axis,
			Value: ex.value,
			Limit: limits[i].limit,
			Line:  ex.line,
		})
	}
	return errs
}

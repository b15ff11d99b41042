package model

// CutSettings holds the CAM parameters that are not per-tool: pass
// depths, retract heights, holding tabs, lead moves and peck drilling.
// Feed rates and spindle speeds come from the tool table and feed table.
type CutSettings struct {
	PassDepth float64 `json:"pass_depth"` // Max depth per pass
	SafeZ     float64 `json:"safe_z"`     // Retract height between cuts
	RapidZ    float64 `json:"rapid_z"`    // Clearance height for long rapids

	// Part holding tabs (keep parts connected during the profile cut)
	TabWidth   float64 `json:"tab_width"`
	TabHeight  float64 `json:"tab_height"`
	TabSpacing float64 `json:"tab_spacing"` // Distance between tabs along a side; 0 disables tabs

	// Arc lead-in/out for profile cuts; 0 disables
	LeadInRadius  float64 `json:"lead_in_radius"`
	LeadInAngle   float64 `json:"lead_in_angle"` // Degrees
	LeadOutRadius float64 `json:"lead_out_radius"`

	UseClimb         bool    `json:"use_climb"`         // Climb vs conventional milling
	StepoverFraction float64 `json:"stepover_fraction"` // Lateral stepover for wide grooves, fraction of tool diameter
	PeckDepth        float64 `json:"peck_depth"`        // Peck increment for drill cycles; 0 = single plunge
}

func DefaultCutSettings() CutSettings {
	return CutSettings{
		PassDepth:        6.0,
		SafeZ:            5.0,
		RapidZ:           25.0,
		TabWidth:         8.0,
		TabHeight:        2.0,
		TabSpacing:       0, // Disabled by default
		LeadInRadius:     0,
		LeadInAngle:      45.0,
		LeadOutRadius:    0,
		UseClimb:         true,
		StepoverFraction: 0.45,
		PeckDepth:        0,
	}
}

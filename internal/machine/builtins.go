package machine

// builtinProfiles returns fresh copies of the built-in machine
// profiles. The last entry is the fallback profile.
func builtinProfiles() []MachineProfile {
	return []MachineProfile{
		{
			Machine: MachineInfo{
				Name:       "Shapeoko HDM",
				Controller: "Carbide Motion (GRBL)",
				TravelX:    685,
				TravelY:    440,
				TravelZ:    140,
				MaxRPM:     24000,
				MinRPM:     8000,
				HasATC:     false,
				Units:      "mm",
				RapidRate:  5000,
			},
			Post: PostConfig{
				FileExtension: ".nc",
				LineNumbers:   false,
				DecimalPlaces: 3,
				SafeZ:         5,
				RapidZ:        25,
				ProgramHeader: []string{"G90", "G17"},
				ProgramEnd:    "G0 Z[SafeZ]\nM5\nM30",
				ToolChange:    "M6 T[Tool]",
				SpindleOn:     "M3 S[RPM]",
				SpindleOff:    "M5",
				CommentStyle:  "parentheses",
				// GRBL has no canned drilling cycles; expand them
				UseCannedCycles: false,
			},
			Description: "Benchtop machine with an HDZ and a 65mm spindle",
			IsBuiltIn:   true,
		},
		{
			Machine: MachineInfo{
				Name:       "Avid Pro 4848",
				Controller: "Mach4",
				TravelX:    49,
				TravelY:    49,
				TravelZ:    8,
				MaxRPM:     24000,
				MinRPM:     6000,
				HasATC:     false,
				Units:      "inch",
				RapidRate:  400,
			},
			Post: PostConfig{
				FileExtension:   ".tap",
				LineNumbers:     true,
				DecimalPlaces:   4,
				SafeZ:           0.25,
				RapidZ:          1.0,
				ProgramHeader:   []string{"G90", "G17", "G94"},
				ProgramEnd:      "G0 Z[SafeZ]\nM5\nM30",
				ToolChange:      "T[Tool] M6",
				SpindleOn:       "M3 S[RPM]",
				SpindleOff:      "M5",
				CommentStyle:    "parentheses",
				UseCannedCycles: true,
			},
			Description: "4x4 foot gantry machine, inch programs",
			IsBuiltIn:   true,
		},
		{
			Machine: MachineInfo{
				Name:       "AXYZ Infinite",
				Controller: "A2MC",
				TravelX:    2100,
				TravelY:    3050,
				TravelZ:    200,
				MaxRPM:     24000,
				MinRPM:     3000,
				HasATC:     true,
				Units:      "mm",
				RapidRate:  25000,
			},
			Post: PostConfig{
				FileExtension:   ".nc",
				LineNumbers:     true,
				DecimalPlaces:   3,
				SafeZ:           10,
				RapidZ:          50,
				ProgramHeader:   []string{"G90", "G17", "G94"},
				ProgramEnd:      "G0 Z[SafeZ]\nM5\nM30",
				ToolChange:      "T[Tool] M6",
				SpindleOn:       "M3 S[RPM]",
				SpindleOff:      "M5",
				CommentStyle:    "parentheses",
				UseCannedCycles: true,
			},
			Description: "Full-sheet flatbed with automatic tool changer",
			IsBuiltIn:   true,
		},
		{
			Machine: MachineInfo{
				Name:       "Generic",
				Controller: "Generic",
				TravelX:    1250,
				TravelY:    2500,
				TravelZ:    150,
				MaxRPM:     24000,
				MinRPM:     5000,
				HasATC:     false,
				Units:      "mm",
				RapidRate:  5000,
			},
			Post: PostConfig{
				FileExtension:   ".nc",
				LineNumbers:     false,
				DecimalPlaces:   3,
				SafeZ:           5,
				RapidZ:          25,
				ProgramHeader:   []string{"G90", "G17"},
				ProgramEnd:      "G0 Z[SafeZ]\nM5\nM2",
				ToolChange:      "T[Tool] M6",
				SpindleOn:       "M3 S[RPM]",
				SpindleOff:      "M5",
				CommentStyle:    "parentheses",
				UseCannedCycles: true,
			},
			Description: "Conservative defaults for unlisted machines",
			IsBuiltIn:   true,
		},
	}
}

// NewCustomProfile creates a custom profile seeded from the Generic
// built-in.
func NewCustomProfile(name string) MachineProfile {
	builtins := builtinProfiles()
	p := builtins[len(builtins)-1]
	p.Machine.Name = name
	p.Description = "Custom profile"
	p.IsBuiltIn = false
	return p
}

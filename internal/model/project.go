package model

// Project ties a job together for save/load: the cut list, nesting and
// CAM configuration, tool table and target machine. The pipeline treats
// a loaded project as an immutable snapshot.
type Project struct {
	Name       string         `json:"name"`
	Parts      []Part         `json:"parts"`
	Stocks     []StockSheet   `json:"stocks,omitempty"`
	Nesting    NestingConfig  `json:"nesting"`
	Cut        CutSettings    `json:"cut"`
	Machine    string         `json:"machine"` // Machine profile name
	Tools      []Tool         `json:"tools"`
	Assignment ToolAssignment `json:"assignment"`
}

func NewProject() Project {
	return Project{
		Name:       "Untitled",
		Parts:      []Part{},
		Nesting:    DefaultNestingConfig(),
		Cut:        DefaultCutSettings(),
		Machine:    "Generic",
		Tools:      DefaultTools(),
		Assignment: DefaultAssignment(),
	}
}

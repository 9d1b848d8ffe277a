package ir

// Snapshot is the persisted result of one simulation run.
type Snapshot struct {
	Version   int          `pkl:"version" json:"version"`
	Serial    int          `pkl:"serial" json:"serial"`
	Component string       `pkl:"component" json:"component"`
	Inputs    []string     `pkl:"inputs" json:"inputs"`
	Outputs   []*PartState `pkl:"outputs" json:"outputs"`
	States    []*PartState `pkl:"states" json:"states"`
}

// PartState is one part's final state: "push", "pull" or a decimal rotation.
type PartState struct {
	Name  string `pkl:"name" json:"name"`
	Value string `pkl:"value" json:"value"`
}

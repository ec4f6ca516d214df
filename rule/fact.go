package rule

import (
	"fmt"

	"github.com/c360studio/mcskg/vocabulary/mcskg"
)

// Slot is one named entity value of a Fact.
type Slot struct {
	Name  string         `json:"name"`
	Kind  mcskg.SlotKind `json:"kind"`
	Value string         `json:"value"`
}

// Fact is the typed content of a concrete rule. There is one implementation
// per rule template; translators switch on the concrete type.
type Fact interface {
	TemplateID() int
	Slots() []Slot
}

// ProductOutput: a product is the output of a process (template 1).
type ProductOutput struct {
	Product string
	Process string
}

func (ProductOutput) TemplateID() int { return TemplateProductProcess }

func (f ProductOutput) Slots() []Slot {
	return []Slot{
		{"product", mcskg.SlotProduct, f.Product},
		{"process", mcskg.SlotProcess, f.Process},
	}
}

// ProcessPrecedence: one process comes before another (template 2).
type ProcessPrecedence struct {
	Preceding  string
	Succeeding string
}

func (ProcessPrecedence) TemplateID() int { return TemplateProcessPrecedence }

func (f ProcessPrecedence) Slots() []Slot {
	return []Slot{
		{"preceding", mcskg.SlotProcess, f.Preceding},
		{"succeeding", mcskg.SlotProcess, f.Succeeding},
	}
}

// MachineParticipation: a machine takes part in a process (template 3).
type MachineParticipation struct {
	Process string
	Machine string
}

func (MachineParticipation) TemplateID() int { return TemplateMachineParticipation }

func (f MachineParticipation) Slots() []Slot {
	return []Slot{
		{"process", mcskg.SlotProcess, f.Process},
		{"machine", mcskg.SlotMachine, f.Machine},
	}
}

// ProductMaterial: a product is made of a material (template 4).
type ProductMaterial struct {
	Product  string
	Material string
}

func (ProductMaterial) TemplateID() int { return TemplateProductMaterial }

func (f ProductMaterial) Slots() []Slot {
	return []Slot{
		{"product", mcskg.SlotProduct, f.Product},
		{"material", mcskg.SlotMaterial, f.Material},
	}
}

// AssemblyOutput: an assembly is the output of an assembly process (template 5).
type AssemblyOutput struct {
	Assembly        string
	AssemblyProcess string
}

func (AssemblyOutput) TemplateID() int { return TemplateAssemblyOutput }

func (f AssemblyOutput) Slots() []Slot {
	return []Slot{
		{"assembly", mcskg.SlotAssembly, f.Assembly},
		{"assembly_process", mcskg.SlotAssemblyProcess, f.AssemblyProcess},
	}
}

// AssemblyInput: a component is the input of an assembly (template 6).
type AssemblyInput struct {
	Assembly  string
	Component string
}

func (AssemblyInput) TemplateID() int { return TemplateAssemblyInput }

func (f AssemblyInput) Slots() []Slot {
	return []Slot{
		{"assembly", mcskg.SlotAssembly, f.Assembly},
		{"component", mcskg.SlotComponent, f.Component},
	}
}

// AssemblySteps: an assembly includes a picking and a fixing step (template 7).
type AssemblySteps struct {
	Assembly string
	Picking  string
	Fixing   string
}

func (AssemblySteps) TemplateID() int { return TemplateAssemblySteps }

func (f AssemblySteps) Slots() []Slot {
	return []Slot{
		{"assembly", mcskg.SlotAssembly, f.Assembly},
		{"picking", mcskg.SlotProcess, f.Picking},
		{"fixing", mcskg.SlotProcess, f.Fixing},
	}
}

// JointProduction: two components, each produced by its own process (template 8).
type JointProduction struct {
	Component1 string
	Process1   string
	Component2 string
	Process2   string
}

func (JointProduction) TemplateID() int { return TemplateJointProduction }

func (f JointProduction) Slots() []Slot {
	return []Slot{
		{"component1", mcskg.SlotComponent, f.Component1},
		{"component2", mcskg.SlotComponent, f.Component2},
		{"process1", mcskg.SlotProcess, f.Process1},
		{"process2", mcskg.SlotProcess, f.Process2},
	}
}

// newFact builds the typed fact for a template from its slot values.
func newFact(id int, v map[string]string) (Fact, error) {
	switch id {
	case TemplateProductProcess:
		return ProductOutput{Product: v["product"], Process: v["process"]}, nil
	case TemplateProcessPrecedence:
		return ProcessPrecedence{Preceding: v["preceding"], Succeeding: v["succeeding"]}, nil
	case TemplateMachineParticipation:
		return MachineParticipation{Process: v["process"], Machine: v["machine"]}, nil
	case TemplateProductMaterial:
		return ProductMaterial{Product: v["product"], Material: v["material"]}, nil
	case TemplateAssemblyOutput:
		return AssemblyOutput{Assembly: v["assembly"], AssemblyProcess: v["assembly_process"]}, nil
	case TemplateAssemblyInput:
		return AssemblyInput{Assembly: v["assembly"], Component: v["component"]}, nil
	case TemplateAssemblySteps:
		return AssemblySteps{Assembly: v["assembly"], Picking: v["picking"], Fixing: v["fixing"]}, nil
	case TemplateJointProduction:
		return JointProduction{
			Component1: v["component1"],
			Process1:   v["process1"],
			Component2: v["component2"],
			Process2:   v["process2"],
		}, nil
	}
	return nil, fmt.Errorf("%w: template %d", ErrUnknownRuleType, id)
}

package types

// UnitValue is the empty tuple ()
type UnitValue struct{}

// Unit is the single unit value
var Unit = UnitValue{}

func (u UnitValue) Kind() Kind     { return KindUnit }
func (u UnitValue) String() string { return "()" }
func (u UnitValue) Debug() string  { return "()" }
func (u UnitValue) Equal(o Value) bool {
	_, ok := o.(UnitValue)
	return ok
}

// BoolValue represents true or false
type BoolValue struct {
	Val bool
}

// NewBool creates a new BoolValue
func NewBool(b bool) BoolValue {
	return BoolValue{Val: b}
}

func (b BoolValue) Kind() Kind { return KindBool }

func (b BoolValue) String() string {
	if b.Val {
		return "true"
	}
	return "false"
}

func (b BoolValue) Debug() string { return b.String() }

func (b BoolValue) Equal(other Value) bool {
	o, ok := other.(BoolValue)
	return ok && o.Val == b.Val
}

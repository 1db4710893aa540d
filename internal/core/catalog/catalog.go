// Package catalog holds the closed vocabularies used to describe recovered
// equipment. Every place that accepts an item field validates against these
// sets instead of declaring its own list.
package catalog

type Condition string

const (
	ConditionWorking    Condition = "working"
	ConditionNonWorking Condition = "non_working"
	ConditionBroken     Condition = "broken"
	ConditionDamaged    Condition = "damaged"
)

var Conditions = []Condition{ConditionWorking, ConditionNonWorking, ConditionBroken, ConditionDamaged}

type StockType string

const (
	StockTypeElectronic StockType = "electronic"
	StockTypeIT         StockType = "it"
	StockTypeBattery    StockType = "battery"
	StockTypeMedical    StockType = "medical"
	StockTypeTelecom    StockType = "telecom"
	StockTypeIndustrial StockType = "industrial"
)

var StockTypes = []StockType{
	StockTypeElectronic,
	StockTypeIT,
	StockTypeBattery,
	StockTypeMedical,
	StockTypeTelecom,
	StockTypeIndustrial,
}

type HazardLevel string

const (
	HazardNone   HazardLevel = "none"
	HazardLow    HazardLevel = "low"
	HazardMedium HazardLevel = "medium"
	HazardHigh   HazardLevel = "high"
)

var HazardLevels = []HazardLevel{HazardNone, HazardLow, HazardMedium, HazardHigh}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (c Condition) Valid() bool   { return contains(Conditions, c) }
func (s StockType) Valid() bool   { return contains(StockTypes, s) }
func (h HazardLevel) Valid() bool { return contains(HazardLevels, h) }
func (p Priority) Valid() bool    { return contains(Priorities, p) }

// Names returns the string form of a closed set, for error messages and
// validators.
func Names[T ~string](set []T) []string {
	out := make([]string, len(set))
	for i, v := range set {
		out[i] = string(v)
	}
	return out
}

// Parse returns the member of set equal to raw, if any.
func Parse[T ~string](set []T, raw string) (T, bool) {
	for _, v := range set {
		if string(v) == raw {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

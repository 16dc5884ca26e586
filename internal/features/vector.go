package features

// Feature is one named model input.
type Feature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Vector is the ordered model input.
type Vector []Feature

// Names returns the feature names in order.
func (v Vector) Names() []string {
	names := make([]string, len(v))
	for i, f := range v {
		names[i] = f.Name
	}
	return names
}

// Values returns the feature values in order.
func (v Vector) Values() []float64 {
	values := make([]float64, len(v))
	for i, f := range v {
		values[i] = f.Value
	}
	return values
}

// Map indexes the vector by name.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(v))
	for _, f := range v {
		m[f.Name] = f.Value
	}
	return m
}

// Get returns the value of the named feature.
func (v Vector) Get(name string) (float64, bool) {
	for _, f := range v {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

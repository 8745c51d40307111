package fizzbuzz

// Summary counts the kinds of lines produced for a bound.
type Summary struct {
	Bound   int `json:"bound"`
	Fizz    int `json:"fizz"`
	Buzz    int `json:"buzz"`
	Numbers int `json:"numbers"`
}

// Lines returns the total number of lines.
func (s Summary) Lines() int {
	return s.Fizz + s.Buzz + s.Numbers
}

// Summarize computes the line counts of Generate(bound) without rendering
// it. Multiples of 15 count as Fizz.
func Summarize(bound int) Summary {
	if bound < 1 {
		return Summary{Bound: bound}
	}
	fizz := bound / 3
	buzz := bound/5 - bound/15
	return Summary{
		Bound:   bound,
		Fizz:    fizz,
		Buzz:    buzz,
		Numbers: bound - fizz - buzz,
	}
}

package equipment

import "fmt"

// Check collects the user-facing problems that would prevent connecting
// source→load, without mutating anything. All problems are returned together
// so a caller can display them at once instead of failing one at a time.
//
// Capacity problems mirror the hard errors Connect would raise. A voltage
// mismatch between the source's downstream face and the load's upstream face
// is reported rather than silently coerced; equipment that is electrically
// transparent on the relevant face (meters, other) is always compatible.
//
// An empty result means the connection would commit cleanly.
func Check(source, load *Node) []string {
	var problems []string

	if source.LoadCount() >= source.AllowedLoads {
		problems = append(problems, fmt.Sprintf(
			"%s already has %d of %d allowed loads", describe(source), source.LoadCount(), source.AllowedLoads))
	}
	if load.SourceCount() >= load.AllowedSources {
		problems = append(problems, fmt.Sprintf(
			"%s already has %d of %d allowed sources", describe(load), load.SourceCount(), load.AllowedSources))
	}

	if sv, ok := source.Voltage(LoadFacing); ok {
		if lv, ok := load.Voltage(SourceFacing); ok && sv != lv {
			problems = append(problems, fmt.Sprintf(
				"voltage mismatch: %s supplies %gkV but %s expects %gkV",
				describe(source), sv, describe(load), lv))
		}
	}

	return problems
}

func describe(n *Node) string {
	if n.Name != "" {
		return fmt.Sprintf("%s %q", n.Kind, n.Name)
	}
	return fmt.Sprintf("%s %q", n.Kind, n.ID)
}

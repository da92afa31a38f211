package domain

import "hash/fnv"

// Palette is the fixed set of member colors. The owner always gets
// Palette[0]; later members get the first entry not already in use.
var Palette = []string{
	"#E53935", // red
	"#1E88E5", // blue
	"#43A047", // green
	"#FB8C00", // orange
	"#8E24AA", // purple
	"#00ACC1", // cyan
	"#F4511E", // deep orange
	"#3949AB", // indigo
	"#7CB342", // light green
	"#D81B60", // pink
	"#00897B", // teal
	"#C0CA33", // lime
	"#5E35B1", // deep purple
	"#039BE5", // light blue
	"#FFB300", // amber
	"#6D4C41", // brown
	"#546E7A", // blue grey
	"#EC407A", // pink accent
	"#26A69A", // teal accent
	"#9E9D24", // olive
}

// AssignColor picks a color for one new member against a snapshot of the
// existing assignments: the first palette entry nobody uses yet, or, once the
// palette is exhausted, a hash of the member ID modulo the palette size.
// Beyond palette capacity two members can share a color; that is accepted.
func AssignColor(memberID string, existing map[string]string) string {
	used := make(map[string]bool, len(existing))
	for _, c := range existing {
		used[c] = true
	}
	for _, c := range Palette {
		if !used[c] {
			return c
		}
	}
	h := fnv.New32a()
	h.Write([]byte(memberID))
	return Palette[h.Sum32()%uint32(len(Palette))]
}

// GenerateColorAssignments rebuilds the full color map for an ordered member
// list whose first element is the owner. Same input order yields the same
// output, so repeated administrative repairs converge.
func GenerateColorAssignments(orderedMemberIDs []string) map[string]string {
	assignments := make(map[string]string, len(orderedMemberIDs))
	for _, id := range orderedMemberIDs {
		if id == "" {
			continue
		}
		if _, ok := assignments[id]; ok {
			continue
		}
		assignments[id] = AssignColor(id, assignments)
	}
	return assignments
}

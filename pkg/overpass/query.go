package overpass

import (
	"fmt"
	"strings"
)

// AmenityQuery selects every node, way and relation of the given amenity
// kinds inside a named administrative area.
type AmenityQuery struct {
	Area        string
	AdminLevel  int
	Amenities   []string
	TimeoutSecs int
}

// String renders the query as Overpass QL.
func (q AmenityQuery) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n", q.TimeoutSecs)
	fmt.Fprintf(&b, "area[\"name\"=%q][\"admin_level\"=\"%d\"]->.searchArea;\n", q.Area, q.AdminLevel)
	b.WriteString("(\n")
	fmt.Fprintf(&b, "  nwr[\"amenity\"~%q](area.searchArea);\n", strings.Join(q.Amenities, "|"))
	b.WriteString(");\n")
	b.WriteString("out center tags;\n")
	return b.String()
}

package source

import (
	"sort"
	"testing"
)

func TestLocation_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Location
		want int
	}{
		{
			name: "equal",
			a:    Location{URI: "a.xbrl", Line: 3, Col: 4},
			b:    Location{URI: "a.xbrl", Line: 3, Col: 4},
			want: 0,
		},
		{
			name: "uri wins over line",
			a:    Location{URI: "a.xbrl", Line: 90},
			b:    Location{URI: "b.xbrl", Line: 1},
			want: -1,
		},
		{
			name: "line before column",
			a:    Location{URI: "a.xbrl", Line: 2, Col: 80},
			b:    Location{URI: "a.xbrl", Line: 10, Col: 1},
			want: -1,
		},
		{
			name: "column",
			a:    Location{URI: "a.xbrl", Line: 2, Col: 9},
			b:    Location{URI: "a.xbrl", Line: 2, Col: 3},
			want: 1,
		},
		{
			name: "path breaks ties",
			a:    Location{URI: "a.xbrl", Path: "/xbrl/unit[2]"},
			b:    Location{URI: "a.xbrl", Path: "/xbrl/unit[1]"},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
			if got := tt.b.Compare(tt.a); got != -tt.want {
				t.Errorf("reverse Compare() = %d, want %d", got, -tt.want)
			}
		})
	}
}

func TestLocation_SortIsTotal(t *testing.T) {
	locs := []Location{
		{URI: "i.xbrl", Line: 7},
		{URI: "i.xbrl", Line: 1, Col: 2},
		{URI: "i.xbrl", Path: "/xbrl"},
		{URI: "i.xbrl", Line: 1, Col: 1},
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].Less(locs[j]) })

	want := []Location{
		{URI: "i.xbrl", Path: "/xbrl"},
		{URI: "i.xbrl", Line: 1, Col: 1},
		{URI: "i.xbrl", Line: 1, Col: 2},
		{URI: "i.xbrl", Line: 7},
	}
	for i := range want {
		if locs[i] != want[i] {
			t.Fatalf("locs[%d] = %v, want %v", i, locs[i], want[i])
		}
	}
}

func TestLocation_Resolvable(t *testing.T) {
	if (Location{URI: "x"}).Resolvable() {
		t.Error("uri-only location must not be resolvable")
	}
	if !(Location{Line: 1}).Resolvable() {
		t.Error("line location must be resolvable")
	}
	if !(Location{Path: "/xbrl"}).Resolvable() {
		t.Error("path location must be resolvable")
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{Location{URI: "i.xbrl", Line: 4, Col: 2}, "i.xbrl:4:2"},
		{Location{URI: "i.xbrl", Line: 4}, "i.xbrl:4"},
		{Location{URI: "i.xbrl", Path: "/xbrl/context[1]"}, "i.xbrl /xbrl/context[1]"},
		{Location{Path: "/xbrl"}, "/xbrl"},
	}
	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

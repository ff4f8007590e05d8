package catalog

import (
	"reflect"
	"testing"

	"setmatch-service/internal/setmatch/model"
)

func intp(v int) *int { return &v }

func TestThemeTreeExpand(t *testing.T) {
	tree := NewThemeTree([]model.Theme{
		{ID: 158, Name: "Star Wars"},
		{ID: 171, Name: "Ultimate Collector Series", ParentID: intp(158)},
		{ID: 172, Name: "UCS Minifigs", ParentID: intp(171)},
		{ID: 1, Name: "Technic"},
	})

	if got := tree.Expand([]int{158}); !reflect.DeepEqual(got, []int{158, 171, 172}) {
		t.Errorf("Expand(158) = %v", got)
	}
	if got := tree.Expand([]int{1, 1}); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("Expand(1,1) = %v", got)
	}
	if got := tree.Expand(nil); len(got) != 0 {
		t.Errorf("Expand(nil) = %v, want empty", got)
	}
	if th, ok := tree.Theme(171); !ok || th.Name != "Ultimate Collector Series" {
		t.Errorf("Theme(171) = %+v, %v", th, ok)
	}
}

func TestIDSet(t *testing.T) {
	if IDSet(nil) != nil {
		t.Error("IDSet(nil) should be nil")
	}
	m := IDSet([]int{})
	if m == nil || len(m) != 0 {
		t.Errorf("IDSet(empty) = %v, want empty non-nil", m)
	}
}

package app

import (
	"reflect"
	"testing"

	"github.com/nhle/mailview/internal/model"
)

func TestApplyFlagChangeAdd(t *testing.T) {
	got := applyFlagChange([]string{model.FlagSeen}, model.FlagFlagged, true)
	want := []string{model.FlagSeen, model.FlagFlagged}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestApplyFlagChangeAddIsIdempotent(t *testing.T) {
	got := applyFlagChange([]string{model.FlagSeen}, model.FlagSeen, true)
	want := []string{model.FlagSeen}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestApplyFlagChangeRemove(t *testing.T) {
	flags := []string{model.FlagSeen, model.FlagFlagged}
	got := applyFlagChange(flags, model.FlagSeen, false)
	want := []string{model.FlagFlagged}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestApplyFlagChangeRemoveMissing(t *testing.T) {
	got := applyFlagChange([]string{model.FlagSeen}, model.FlagFlagged, false)
	want := []string{model.FlagSeen}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

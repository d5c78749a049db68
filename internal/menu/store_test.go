package menu

import (
	"errors"
	"testing"

	"github.com/starford/menushell/internal/apperr"
)

func TestStore_GetMiss(t *testing.T) {
	s := NewStore()
	if _, err := s.Get("nowhere"); !errors.Is(err, apperr.ErrLookupMiss) {
		t.Errorf("err = %v, want ErrLookupMiss", err)
	}
}

func TestStore_ValidateDanglingParent(t *testing.T) {
	s := NewStore()
	s.put(exitNode())
	s.put(&Node{Path: "tools/a", Parent: "tools", Kind: KindFolder, Options: appendGoBack(nil)})
	if err := s.Validate(); !errors.Is(err, apperr.ErrLookupMiss) {
		t.Errorf("err = %v, want ErrLookupMiss", err)
	}
}

func TestStore_ValidateDanglingDescend(t *testing.T) {
	s := NewStore()
	s.put(exitNode())
	s.put(projectsNode([]string{"p"}))
	s.put(&Node{Path: "tools", Parent: ProjectsKey, Kind: KindFolder, Options: appendGoBack([]Option{
		{Ordinal: 1, Label: "ghost", Target: Descend("tools/ghost")},
	})})
	if err := s.Validate(); !errors.Is(err, apperr.ErrLookupMiss) {
		t.Errorf("err = %v, want ErrLookupMiss", err)
	}
}

func TestStore_ValidateOrdinalGap(t *testing.T) {
	s := NewStore()
	s.put(exitNode())
	s.put(projectsNode([]string{"p"}))
	s.put(&Node{Path: "tools", Parent: ProjectsKey, Kind: KindFolder, Options: []Option{
		{Ordinal: 1, Label: "a", Target: Ascend()},
		{Ordinal: 3, Label: GoBackLabel, Target: Ascend()},
	}})
	if err := s.Validate(); err == nil {
		t.Error("expected ordinal gap to fail validation")
	}
}

func TestStore_KeysInBuildOrder(t *testing.T) {
	s := NewStore()
	s.put(projectsNode([]string{"p"}))
	s.put(exitNode())
	keys := s.Keys()
	if len(keys) != 2 || keys[0] != ProjectsKey || keys[1] != ExitKey {
		t.Errorf("keys = %v", keys)
	}
	if s.Len() != 2 {
		t.Errorf("len = %d", s.Len())
	}
}

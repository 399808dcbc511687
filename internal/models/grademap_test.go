package models

import (
	"encoding/json"
	"testing"
)

func TestGradeMapOrder(t *testing.T) {
	var m GradeMap
	m.Set("quiz1", 85)
	m.Set("midterm", 88)
	m.Set("project1", 92)

	t.Run("порядок добавления сохраняется", func(t *testing.T) {
		got := m.Keys()
		want := []string{"quiz1", "midterm", "project1"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("ключ %d: ожидали %s, получили %s", i, want[i], got[i])
			}
		}
	})

	t.Run("перезапись не меняет позицию", func(t *testing.T) {
		m.Set("quiz1", 90)
		if m.Keys()[0] != "quiz1" {
			t.Fatalf("quiz1 должен остаться первым")
		}
		if v, _ := m.Get("quiz1"); v != 90 {
			t.Fatalf("ожидали 90, получили %d", v)
		}
	})

	t.Run("json сохраняет порядок", func(t *testing.T) {
		raw, err := json.Marshal(m)
		if err != nil {
			t.Fatal(err)
		}
		want := `{"quiz1":90,"midterm":88,"project1":92}`
		if string(raw) != want {
			t.Fatalf("ожидали %s, получили %s", want, raw)
		}

		var back GradeMap
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatal(err)
		}
		if back.Keys()[1] != "midterm" {
			t.Fatalf("порядок потерян после декодирования: %v", back.Keys())
		}
	})
}

func TestGradeMapMean(t *testing.T) {
	var empty GradeMap
	if _, ok := empty.Mean(); ok {
		t.Fatal("у пустой карты не должно быть среднего")
	}

	m := NewGradeMap(
		GradePair{Assignment: "a", Score: 50},
		GradePair{Assignment: "b", Score: 70},
	)
	mean, ok := m.Mean()
	if !ok || mean != 60 {
		t.Fatalf("ожидали 60, получили %v (ok=%v)", mean, ok)
	}
}

func TestGradeMapNull(t *testing.T) {
	var m GradeMap
	if err := json.Unmarshal([]byte(`null`), &m); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 {
		t.Fatalf("после null карта должна быть пустой")
	}
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// GradeMap — оценки по работам с сохранением порядка ключей.
// Сериализуется в обычный JSON-объект: исходное приложение хранило оценки
// объектом, а интерфейс выводил их в порядке добавления.
type GradeMap struct {
	keys   []string
	scores map[string]int
}

func NewGradeMap(pairs ...GradePair) GradeMap {
	var m GradeMap
	for _, p := range pairs {
		m.Set(p.Assignment, p.Score)
	}
	return m
}

type GradePair struct {
	Assignment string
	Score      int
}

// Set ставит оценку; новая работа добавляется в конец порядка.
func (m *GradeMap) Set(assignment string, score int) {
	if m.scores == nil {
		m.scores = make(map[string]int)
	}
	if _, ok := m.scores[assignment]; !ok {
		m.keys = append(m.keys, assignment)
	}
	m.scores[assignment] = score
}

func (m GradeMap) Get(assignment string) (int, bool) {
	v, ok := m.scores[assignment]
	return v, ok
}

func (m GradeMap) Len() int { return len(m.keys) }

// Keys возвращает работы в порядке добавления.
func (m GradeMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m GradeMap) Values() []int {
	out := make([]int, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.scores[k])
	}
	return out
}

// Mean — средний балл по имеющимся оценкам; ok=false, если оценок нет.
func (m GradeMap) Mean() (float64, bool) {
	if len(m.keys) == 0 {
		return 0, false
	}
	sum := 0
	for _, k := range m.keys {
		sum += m.scores[k]
	}
	return float64(sum) / float64(len(m.keys)), true
}

func (m GradeMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(m.scores[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *GradeMap) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.scores = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil { // JSON null
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("grades: ожидали объект, получили %v", tok)
	}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("grades: некорректный ключ %v", kt)
		}
		var score int
		if err := dec.Decode(&score); err != nil {
			return fmt.Errorf("grades[%s]: %w", key, err)
		}
		m.Set(key, score)
	}
	// закрывающая скобка
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

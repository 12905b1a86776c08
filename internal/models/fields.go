package models

import "strings"

// FieldKind тип поля проекта
type FieldKind string

// Поддерживаемые типы полей
const (
	FieldText         FieldKind = "text"
	FieldDate         FieldKind = "date"
	FieldSingleSelect FieldKind = "single_select"
	FieldIteration    FieldKind = "iteration"
)

// FieldOption вариант значения single_select поля
type FieldOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Iteration итерация iteration поля
type Iteration struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartDate string `json:"start_date,omitempty"`
}

// FieldDefinition описание поля проекта
type FieldDefinition struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Kind       FieldKind     `json:"kind"`
	ProjectID  string        `json:"project_id"`
	Options    []FieldOption `json:"options,omitempty"`
	Iterations []Iteration   `json:"iterations,omitempty"`
}

// OptionByName ищет вариант по имени без учета регистра и пробелов
func (d FieldDefinition) OptionByName(name string) (FieldOption, bool) {
	key := NormalizeName(name)
	for _, o := range d.Options {
		if NormalizeName(o.Name) == key {
			return o, true
		}
	}
	return FieldOption{}, false
}

// OptionByID ищет вариант по идентификатору
func (d FieldDefinition) OptionByID(id string) (FieldOption, bool) {
	for _, o := range d.Options {
		if o.ID == id {
			return o, true
		}
	}
	return FieldOption{}, false
}

// IterationByTitle ищет итерацию по названию без учета регистра и пробелов
func (d FieldDefinition) IterationByTitle(title string) (Iteration, bool) {
	key := NormalizeName(title)
	for _, it := range d.Iterations {
		if NormalizeName(it.Title) == key {
			return it, true
		}
	}
	return Iteration{}, false
}

// IterationByID ищет итерацию по идентификатору
func (d FieldDefinition) IterationByID(id string) (Iteration, bool) {
	for _, it := range d.Iterations {
		if it.ID == id {
			return it, true
		}
	}
	return Iteration{}, false
}

// Catalog набор определений полей одного проекта
type Catalog struct {
	ProjectID string            `json:"project_id"`
	Fields    []FieldDefinition `json:"fields"`
}

// Field возвращает первое поле с совпадающим именем
func (c *Catalog) Field(name string) (FieldDefinition, bool) {
	if c == nil {
		return FieldDefinition{}, false
	}
	key := NormalizeName(name)
	for _, f := range c.Fields {
		if NormalizeName(f.Name) == key {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// FieldByID возвращает поле по идентификатору
func (c *Catalog) FieldByID(id string) (FieldDefinition, bool) {
	if c == nil {
		return FieldDefinition{}, false
	}
	for _, f := range c.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// NormalizeName приводит имя к нижнему регистру и схлопывает пробелы
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Package admin builds management screens from static per-entity registrations.
//
// A registration lists its columns, filters, fieldsets and bulk actions up front; nothing is looked up by field
// name at request time. The HTTP layer turns the ChangeList and ChangeForm values into pages.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

const DefaultPageSize = 100

var (
	ErrUnknownModel   = errors.New("admin: unknown model")
	ErrUnknownAction  = errors.New("admin: unknown action")
	ErrDuplicateModel = errors.New("admin: model already registered")
	ErrNoColumns      = errors.New("admin: registration has no columns")
	ErrNoSelection    = errors.New("admin: no items selected")
	ErrNotFound       = errors.New("admin: object not found")
)

// Query is what a changelist asks of a data source.
type Query struct {
	Search   string
	Filters  map[string]string
	Year     int
	Page     int
	PageSize int
}

// Offset is the number of rows before the current page.
func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

type Column[T any] struct {
	Name  string
	Label string
	Value func(T) string
}

type Choice struct {
	Value string
	Label string
}

// Filter is a sidebar filter. Choices is called on every changelist render so it may hit the store.
type Filter struct {
	Name    string
	Label   string
	Choices func(ctx context.Context) ([]Choice, error)
}

// StaticChoices wraps a fixed choice list.
func StaticChoices(choices ...Choice) func(context.Context) ([]Choice, error) {
	return func(context.Context) ([]Choice, error) { return choices, nil }
}

// YesNo is the choice list for boolean filters.
var YesNo = StaticChoices(Choice{Value: "1", Label: "Yes"}, Choice{Value: "0", Label: "No"})

type Fieldset[T any] struct {
	Title     string
	Collapsed bool
	Fields    []Column[T]
}

// Action runs on the selected primary keys and reports how many rows it touched.
type Action struct {
	Name    string
	Label   string
	Message string // fmt verb %d receives the count
	Run     func(ctx context.Context, ids []uint) (int64, error)
}

// Source feeds a registration. AdminGet reports a missing id as ErrNotFound.
type Source[T any] interface {
	AdminList(ctx context.Context, q Query) ([]T, int64, error)
	AdminGet(ctx context.Context, id uint) (T, error)
}

// SourceFuncs adapts two functions to Source.
type SourceFuncs[T any] struct {
	List func(ctx context.Context, q Query) ([]T, int64, error)
	Get  func(ctx context.Context, id uint) (T, error)
}

func (s SourceFuncs[T]) AdminList(ctx context.Context, q Query) ([]T, int64, error) {
	return s.List(ctx, q)
}

func (s SourceFuncs[T]) AdminGet(ctx context.Context, id uint) (T, error) {
	return s.Get(ctx, id)
}

type ModelAdmin[T any] struct {
	Slug          string
	Title         string
	TitlePlural   string
	Source        Source[T]
	ID            func(T) uint
	Display       func(T) string
	Columns       []Column[T]
	Filters       []Filter
	SearchFields  []string
	DateHierarchy string
	Fieldsets     []Fieldset[T]
	PageSize      int
	Actions       []Action
}

// Meta is the type-free description of a registration.
type Meta struct {
	Slug          string
	Title         string
	TitlePlural   string
	SearchFields  []string
	DateHierarchy string
	PageSize      int
}

type Row struct {
	ID    uint
	Cells []string
}

type FilterView struct {
	Name     string
	Label    string
	Choices  []Choice
	Selected string
}

type ActionView struct {
	Name  string
	Label string
}

type ChangeList struct {
	Meta    Meta
	Query   Query
	Headers []string
	Rows    []Row
	Total   int64
	Pages   int
	Filters []FilterView
	Actions []ActionView
}

func (cl *ChangeList) HasPrev() bool { return cl.Query.Page > 1 }
func (cl *ChangeList) HasNext() bool { return cl.Query.Page < cl.Pages }

type Field struct {
	Label string
	Value string
}

type FieldsetView struct {
	Title     string
	Collapsed bool
	Fields    []Field
}

type ChangeForm struct {
	Meta      Meta
	ID        uint
	Display   string
	Fieldsets []FieldsetView
}

// Model is the type-erased registration held by Site.
type Model interface {
	Meta() Meta
	Changelist(ctx context.Context, q Query) (*ChangeList, error)
	Change(ctx context.Context, id uint) (*ChangeForm, error)
	Action(name string) (Action, bool)
}

func (m *ModelAdmin[T]) Meta() Meta {
	plural := m.TitlePlural
	if plural == "" {
		plural = m.Title + "s"
	}
	return Meta{
		Slug:          m.Slug,
		Title:         m.Title,
		TitlePlural:   plural,
		SearchFields:  m.SearchFields,
		DateHierarchy: m.DateHierarchy,
		PageSize:      m.PageSize,
	}
}

func (m *ModelAdmin[T]) Changelist(ctx context.Context, q Query) (*ChangeList, error) {
	q.PageSize = m.PageSize
	if q.Page < 1 {
		q.Page = 1
	}
	items, total, err := m.Source.AdminList(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", m.Slug, err)
	}

	cl := &ChangeList{
		Meta:    m.Meta(),
		Query:   q,
		Total:   total,
		Pages:   int((total + int64(q.PageSize) - 1) / int64(q.PageSize)),
		Headers: make([]string, 0, len(m.Columns)),
		Rows:    make([]Row, 0, len(items)),
	}
	for _, col := range m.Columns {
		cl.Headers = append(cl.Headers, col.Label)
	}
	for _, item := range items {
		row := Row{ID: m.ID(item), Cells: make([]string, 0, len(m.Columns))}
		for _, col := range m.Columns {
			row.Cells = append(row.Cells, col.Value(item))
		}
		cl.Rows = append(cl.Rows, row)
	}
	for _, f := range m.Filters {
		choices, err := f.Choices(ctx)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", f.Name, err)
		}
		cl.Filters = append(cl.Filters, FilterView{
			Name:     f.Name,
			Label:    f.Label,
			Choices:  choices,
			Selected: q.Filters[f.Name],
		})
	}
	for _, a := range m.Actions {
		cl.Actions = append(cl.Actions, ActionView{Name: a.Name, Label: a.Label})
	}
	return cl, nil
}

func (m *ModelAdmin[T]) Change(ctx context.Context, id uint) (*ChangeForm, error) {
	item, err := m.Source.AdminGet(ctx, id)
	if err != nil {
		return nil, err
	}
	form := &ChangeForm{Meta: m.Meta(), ID: id, Display: m.Display(item)}

	fieldsets := m.Fieldsets
	if len(fieldsets) == 0 {
		fieldsets = []Fieldset[T]{{Fields: m.Columns}}
	}
	for _, fs := range fieldsets {
		view := FieldsetView{Title: fs.Title, Collapsed: fs.Collapsed}
		for _, f := range fs.Fields {
			view.Fields = append(view.Fields, Field{Label: f.Label, Value: f.Value(item)})
		}
		form.Fieldsets = append(form.Fieldsets, view)
	}
	return form, nil
}

func (m *ModelAdmin[T]) Action(name string) (Action, bool) {
	for _, a := range m.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// Site is the registry of admin models. Register everything before serving.
type Site struct {
	Title  string
	models map[string]Model
}

func NewSite(title string) *Site {
	return &Site{Title: title, models: make(map[string]Model)}
}

// Register validates a registration and fills its defaults.
func Register[T any](s *Site, m *ModelAdmin[T]) error {
	if m.Slug == "" {
		return errors.New("admin: registration needs a slug")
	}
	if _, dup := s.models[m.Slug]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, m.Slug)
	}
	if len(m.Columns) == 0 {
		return fmt.Errorf("%w: %s", ErrNoColumns, m.Slug)
	}
	if m.Source == nil || m.ID == nil {
		return fmt.Errorf("admin: %s needs a source and an id accessor", m.Slug)
	}
	if m.PageSize <= 0 {
		m.PageSize = DefaultPageSize
	}
	if m.Display == nil {
		first := m.Columns[0].Value
		m.Display = first
	}
	s.models[m.Slug] = m
	return nil
}

// Models lists registrations sorted by plural title.
func (s *Site) Models() []Meta {
	metas := make([]Meta, 0, len(s.models))
	for _, m := range s.models {
		metas = append(metas, m.Meta())
	}
	sort.Slice(metas, func(i, j int) bool {
		return strings.ToLower(metas[i].TitlePlural) < strings.ToLower(metas[j].TitlePlural)
	})
	return metas
}

func (s *Site) model(slug string) (Model, error) {
	m, ok := s.models[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, slug)
	}
	return m, nil
}

func (s *Site) Changelist(ctx context.Context, slug string, q Query) (*ChangeList, error) {
	m, err := s.model(slug)
	if err != nil {
		return nil, err
	}
	return m.Changelist(ctx, q)
}

func (s *Site) Change(ctx context.Context, slug string, id uint) (*ChangeForm, error) {
	m, err := s.model(slug)
	if err != nil {
		return nil, err
	}
	return m.Change(ctx, id)
}

// RunAction applies a bulk action and returns the user-facing summary.
func (s *Site) RunAction(ctx context.Context, slug, name string, ids []uint) (string, error) {
	m, err := s.model(slug)
	if err != nil {
		return "", err
	}
	a, ok := m.Action(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	if len(ids) == 0 {
		return "", ErrNoSelection
	}
	n, err := a.Run(ctx, ids)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", slug, name, err)
	}
	return fmt.Sprintf(a.Message, n), nil
}

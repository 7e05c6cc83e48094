package postgres

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"tour-booking/internal/domain/resource"
	"tour-booking/internal/query"
	appErrors "tour-booking/pkg/errors"
)

// Mapper converts between a domain entity E and its gorm model M.
type Mapper[E any, M any] struct {
	ToModel  func(*E) *M
	ToEntity func(*M) *E
}

type preload struct {
	assoc string
	args  []interface{}
}

type storeOptions struct {
	baseScope  func(*gorm.DB) *gorm.DB
	hidden     []string
	preloads   []preload
	populate   map[string][]preload
	softDelete string
}

type StoreOption func(*storeOptions)

// WithBaseScope restricts every statement, e.g. to hide secret tours.
func WithBaseScope(scope func(*gorm.DB) *gorm.DB) StoreOption {
	return func(o *storeOptions) { o.baseScope = scope }
}

// WithHiddenColumns drops columns from the default projection.
func WithHiddenColumns(columns ...string) StoreOption {
	return func(o *storeOptions) { o.hidden = append(o.hidden, columns...) }
}

// WithPreload loads an association on every read that is not projected.
func WithPreload(assoc string, args ...interface{}) StoreOption {
	return func(o *storeOptions) { o.preloads = append(o.preloads, preload{assoc: assoc, args: args}) }
}

// WithPopulate registers a relation FindByID may resolve on request.
// Registering the same name again adds another association to load with it.
func WithPopulate(name, assoc string, args ...interface{}) StoreOption {
	return func(o *storeOptions) {
		if o.populate == nil {
			o.populate = make(map[string][]preload)
		}
		o.populate[name] = append(o.populate[name], preload{assoc: assoc, args: args})
	}
}

// WithSoftDelete makes DeleteByID set column to false instead of removing the row.
func WithSoftDelete(column string) StoreOption {
	return func(o *storeOptions) { o.softDelete = column }
}

// Store is the gorm implementation of resource.Store.
type Store[E any, M any] struct {
	db     *DB
	mapper Mapper[E, M]
	table  string
	fields map[string]*schema.Field
	opts   storeOptions
}

var _ resource.Store[struct{}] = (*Store[struct{}, struct{ ID uuid.UUID }])(nil)
var _ resource.Transactor = (*Store[struct{}, struct{ ID uuid.UUID }])(nil)

func NewStore[E any, M any](db *DB, mapper Mapper[E, M], opts ...StoreOption) (*Store[E, M], error) {
	sch, err := schema.Parse(new(M), &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	fields := make(map[string]*schema.Field)
	for _, f := range sch.Fields {
		if f.DBName == "" {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		fields[name] = f
	}

	s := &Store[E, M]{
		db:     db,
		mapper: mapper,
		table:  sch.Table,
		fields: fields,
	}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s, nil
}

// Transaction shares one transaction with every repository on the same DB.
func (s *Store[E, M]) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.Transaction(ctx, fn)
}

func (s *Store[E, M]) base(ctx context.Context) *gorm.DB {
	tx := s.db.conn(ctx).Model(new(M))
	if s.opts.baseScope != nil {
		tx = tx.Scopes(s.opts.baseScope)
	}
	return tx
}

// field resolves an API field name through the column allow-list.
func (s *Store[E, M]) field(name string) (*schema.Field, error) {
	f, ok := s.fields[name]
	if !ok {
		return nil, appErrors.Validation(fmt.Sprintf("invalid field: %s", name), nil)
	}
	return f, nil
}

func column(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

func idEq(id uuid.UUID) clause.Expression {
	return clause.Eq{Column: column("id"), Value: id}
}

func (s *Store[E, M]) Find(ctx context.Context, scope resource.Scope, d *query.Descriptor) ([]*E, error) {
	if d == nil {
		d = &query.Descriptor{Page: query.DefaultPage, Limit: query.DefaultLimit}
	}

	tx := s.base(ctx)

	keys := make([]string, 0, len(scope))
	for k := range scope {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f, err := s.field(k)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(clause.Eq{Column: column(f.DBName), Value: scope[k]})
	}

	for _, c := range d.Conditions {
		f, err := s.field(c.Field)
		if err != nil {
			return nil, err
		}
		v, err := coerce(f, c.Field, c.Value)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(compare(f.DBName, c.Op, v))
	}

	for _, sf := range d.Sort {
		f, err := s.field(sf.Field)
		if err != nil {
			return nil, err
		}
		tx = tx.Order(clause.OrderByColumn{Column: column(f.DBName), Desc: sf.Desc})
	}

	if len(d.Fields) > 0 {
		cols := []string{"id"}
		for _, name := range d.Fields {
			f, err := s.field(name)
			if err != nil {
				return nil, err
			}
			if f.DBName != "id" {
				cols = append(cols, f.DBName)
			}
		}
		tx = tx.Select(cols)
	} else {
		if len(s.opts.hidden) > 0 {
			tx = tx.Omit(s.opts.hidden...)
		}
		for _, p := range s.opts.preloads {
			tx = tx.Preload(p.assoc, p.args...)
		}
	}

	if d.Skip > 0 {
		tx = tx.Offset(d.Skip)
	}
	if d.Limit > 0 {
		tx = tx.Limit(d.Limit)
	}

	var rows []M
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.table, translateError(err))
	}

	out := make([]*E, 0, len(rows))
	for i := range rows {
		out = append(out, s.mapper.ToEntity(&rows[i]))
	}
	return out, nil
}

func (s *Store[E, M]) FindByID(ctx context.Context, id uuid.UUID, populate ...string) (*E, error) {
	tx := s.base(ctx)
	if len(s.opts.hidden) > 0 {
		tx = tx.Omit(s.opts.hidden...)
	}
	for _, p := range s.opts.preloads {
		tx = tx.Preload(p.assoc, p.args...)
	}
	for _, name := range populate {
		ps, ok := s.opts.populate[name]
		if !ok {
			return nil, appErrors.Validation(fmt.Sprintf("cannot populate %s", name), nil)
		}
		for _, p := range ps {
			tx = tx.Preload(p.assoc, p.args...)
		}
	}

	var m M
	if err := tx.Where(idEq(id)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", s.table, translateError(err))
	}
	return s.mapper.ToEntity(&m), nil
}

func (s *Store[E, M]) Insert(ctx context.Context, entity *E) error {
	m := s.mapper.ToModel(entity)
	if err := s.db.conn(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", s.table, translateError(err))
	}
	*entity = *s.mapper.ToEntity(m)
	return nil
}

// UpdateByID writes every column of entity except the key and creation time.
func (s *Store[E, M]) UpdateByID(ctx context.Context, id uuid.UUID, entity *E) error {
	m := s.mapper.ToModel(entity)
	res := s.base(ctx).
		Where(idEq(id)).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(m)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s: %w", s.table, translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

func (s *Store[E, M]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	var res *gorm.DB
	if s.opts.softDelete != "" {
		res = s.base(ctx).Where(idEq(id)).Update(s.opts.softDelete, false)
	} else {
		res = s.base(ctx).Where(idEq(id)).Delete(new(M))
	}
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", s.table, translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

func compare(col string, op query.Operator, v interface{}) clause.Expression {
	c := column(col)
	switch op {
	case query.OpGte:
		return clause.Gte{Column: c, Value: v}
	case query.OpGt:
		return clause.Gt{Column: c, Value: v}
	case query.OpLte:
		return clause.Lte{Column: c, Value: v}
	case query.OpLt:
		return clause.Lt{Column: c, Value: v}
	default:
		return clause.Eq{Column: c, Value: v}
	}
}

var (
	uuidType = reflect.TypeOf(uuid.UUID{})
	timeType = reflect.TypeOf(time.Time{})
)

// coerce parses a raw request value into the Go type of the column.
func coerce(f *schema.Field, name, raw string) (interface{}, error) {
	t := f.FieldType
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	invalid := func(err error) error {
		return appErrors.Validation(fmt.Sprintf("invalid %s: %s", name, raw), err)
	}

	switch t {
	case uuidType:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, invalid(err)
		}
		return id, nil
	case timeType:
		for _, layout := range []string{time.RFC3339, time.DateOnly} {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts, nil
			}
		}
		return nil, invalid(nil)
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, invalid(err)
		}
		return n, nil
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, invalid(err)
		}
		return n, nil
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, invalid(err)
		}
		return b, nil
	case reflect.String:
		return raw, nil
	default:
		return nil, appErrors.Validation(fmt.Sprintf("field %s cannot be filtered", name), nil)
	}
}

// Package store is the shared, typed key/value state layer for the daemon.
// Sensor drivers, the controllers and the display communicate only through
// resources held here. Every resource carries an age — the time since it was
// last written — so readers can detect stale or never-written values without
// blocking.
package store

import (
	"fmt"
	"io"
	"log"
	"math"
	"sort"
	"sync"
	"time"
)

// Type is the value type of a resource.
type Type int

const (
	TypeFloat Type = iota
	TypeUint32
	TypeInt32
	TypeBool
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeFloat:
		return "float"
	case TypeUint32:
		return "uint32"
	case TypeInt32:
		return "int32"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	}
	return "invalid"
}

// InvalidAge is returned for resources that have never been written.
const InvalidAge = time.Duration(math.MaxInt64)

type key struct {
	id       ID
	instance int
}

type entry struct {
	value   any
	written time.Time
}

// Store holds typed resources with per-key write timestamps. All methods are
// safe for concurrent use; atomicity is per single get or set only.
type Store struct {
	mu      sync.RWMutex
	entries map[key]entry
	now     func() time.Time
}

// New creates an empty store using the wall clock for ages.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates a store with an injectable clock, for tests.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		entries: make(map[key]entry),
		now:     now,
	}
}

// checkAccess validates id, instance and type against the schema. Invalid
// access is logged and reported, never panicked on.
func checkAccess(op string, id ID, instance int, typ Type) bool {
	if id < 0 || id >= lastID {
		log.Printf("store: %s: resource %d out of range", op, id)
		return false
	}
	info := schema[id]
	if instance < 0 || instance >= info.instances {
		log.Printf("store: %s %s: instance %d out of range", op, info.name, instance)
		return false
	}
	if info.typ != typ {
		log.Printf("store: %s %s: type mismatch, resource is %s not %s", op, info.name, info.typ, typ)
		return false
	}
	return true
}

func (s *Store) get(id ID, instance int, typ Type) (any, time.Duration) {
	if !checkAccess("get", id, instance, typ) {
		return nil, InvalidAge
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key{id, instance}]
	if !ok {
		return nil, InvalidAge
	}
	return e.value, s.now().Sub(e.written)
}

func (s *Store) set(id ID, instance int, typ Type, value any) {
	if !checkAccess("set", id, instance, typ) {
		return
	}
	s.mu.Lock()
	s.entries[key{id, instance}] = entry{value: value, written: s.now()}
	s.mu.Unlock()
}

// GetFloat returns the value and age of a float resource. Never-written
// resources return (0, InvalidAge).
func (s *Store) GetFloat(id ID, instance int) (float64, time.Duration) {
	v, age := s.get(id, instance, TypeFloat)
	if v == nil {
		return 0, age
	}
	return v.(float64), age
}

// GetUint32 returns the value and age of a uint32 resource.
func (s *Store) GetUint32(id ID, instance int) (uint32, time.Duration) {
	v, age := s.get(id, instance, TypeUint32)
	if v == nil {
		return 0, age
	}
	return v.(uint32), age
}

// GetInt32 returns the value and age of an int32 resource.
func (s *Store) GetInt32(id ID, instance int) (int32, time.Duration) {
	v, age := s.get(id, instance, TypeInt32)
	if v == nil {
		return 0, age
	}
	return v.(int32), age
}

// GetBool returns the value and age of a bool resource.
func (s *Store) GetBool(id ID, instance int) (bool, time.Duration) {
	v, age := s.get(id, instance, TypeBool)
	if v == nil {
		return false, age
	}
	return v.(bool), age
}

// GetString returns the value and age of a string resource.
func (s *Store) GetString(id ID, instance int) (string, time.Duration) {
	v, age := s.get(id, instance, TypeString)
	if v == nil {
		return "", age
	}
	return v.(string), age
}

// SetFloat writes a float resource and stamps its age.
func (s *Store) SetFloat(id ID, instance int, value float64) {
	s.set(id, instance, TypeFloat, value)
}

// SetUint32 writes a uint32 resource.
func (s *Store) SetUint32(id ID, instance int, value uint32) {
	s.set(id, instance, TypeUint32, value)
}

// SetInt32 writes an int32 resource.
func (s *Store) SetInt32(id ID, instance int, value int32) {
	s.set(id, instance, TypeInt32, value)
}

// SetBool writes a bool resource.
func (s *Store) SetBool(id ID, instance int, value bool) {
	s.set(id, instance, TypeBool, value)
}

// SetString writes a string resource.
func (s *Store) SetString(id ID, instance int, value string) {
	s.set(id, instance, TypeString, value)
}

// Age returns the time since the resource was last written, or InvalidAge if
// it never was.
func (s *Store) Age(id ID, instance int) time.Duration {
	if id < 0 || id >= lastID {
		return InvalidAge
	}
	if instance < 0 || instance >= schema[id].instances {
		return InvalidAge
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key{id, instance}]
	if !ok {
		return InvalidAge
	}
	return s.now().Sub(e.written)
}

// Len returns the number of written entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Dump writes every resource — written or not — to w, one line per instance,
// with value and age. Used by the diagnostic gesture on the home page.
func (s *Store) Dump(w io.Writer) {
	type line struct {
		name string
		text string
	}
	s.mu.RLock()
	var lines []line
	now := s.now()
	for id := ID(0); id < lastID; id++ {
		info := schema[id]
		for inst := 0; inst < info.instances; inst++ {
			name := info.name
			if info.instances > 1 {
				name = fmt.Sprintf("%s[%d]", info.name, inst)
			}
			e, ok := s.entries[key{id, inst}]
			if !ok {
				lines = append(lines, line{name, fmt.Sprintf("%-30s %-6s <unset>", name, info.typ)})
				continue
			}
			age := now.Sub(e.written).Truncate(time.Millisecond)
			lines = append(lines, line{name, fmt.Sprintf("%-30s %-6s %v (age %v)", name, info.typ, e.value, age)})
		}
	}
	s.mu.RUnlock()

	sort.Slice(lines, func(i, j int) bool { return lines[i].name < lines[j].name })
	for _, l := range lines {
		fmt.Fprintln(w, l.text)
	}
}

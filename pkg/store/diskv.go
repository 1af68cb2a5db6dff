package store

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/rollcall/pkg/schedule"
	"tableflip.dev/rollcall/pkg/timetable"
)

// Persistence is the storage contract for streams, timetable slots and
// attendance records. It stands in for the remote schedule service: the week
// generator reads from it and the four mutation operations write to it.
type Persistence interface {
	Streams(ctx context.Context) []timetable.Stream
	EnsureStream(s timetable.Stream) error

	Slots(ctx context.Context, streamID string) []*timetable.Slot
	StoreSlot(sl *timetable.Slot) error
	DeleteSlot(sl *timetable.Slot) error

	Records(ctx context.Context, streamID string, start, end schedule.Date) []*timetable.Record
	StoreRecord(r *timetable.Record) error
	DeleteRecord(r *timetable.Record) error

	Watch(ctx context.Context) (<-chan Event, error)
}

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

const (
	layoutISO        = "2006-01-02"
	streamsIndexFile = ".streams.json"
	slotBucket       = "slot"
)

// Slot keys are `stream-slot-id`, record keys `stream-YYYY-MM-DD-id`; the
// transform turns every segment but the last into a directory level.
func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

func (p *persistence) Slots(ctx context.Context, streamID string) []*timetable.Slot {
	encoded := toStream(streamID)
	all := make([]*timetable.Slot, 0)
	for key := range p.d.Keys(ctx.Done()) {
		pk := keyToPathTransform(key)
		if len(pk.Path) < 2 || pk.Path[0] != encoded || pk.Path[1] != slotBucket {
			continue
		}
		sl, err := p.readSlot(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		all = append(all, sl)
	}
	sortSlots(all)
	return all
}

func (p *persistence) readSlot(key string) (*timetable.Slot, error) {
	val, err := p.d.Read(key)
	if err != nil {
		return nil, err
	}
	sl := &timetable.Slot{}
	if err := json.Unmarshal(val, sl); err != nil {
		return nil, err
	}
	sl.ID = keyToPathTransform(key).FileName
	return sl, nil
}

func (p *persistence) StoreSlot(sl *timetable.Slot) error {
	if sl.StreamID == "" {
		return errors.New("store: slot stream required")
	}
	key := slotKey(sl)
	data, err := json.Marshal(sl)
	if err != nil {
		return err
	}
	return p.d.Write(key, data)
}

func (p *persistence) DeleteSlot(sl *timetable.Slot) error {
	if sl.ID == "" {
		return errors.New("store: slot id required")
	}
	return p.d.Erase(slotKey(sl))
}

func (p *persistence) Records(ctx context.Context, streamID string, start, end schedule.Date) []*timetable.Record {
	encoded := toStream(streamID)
	all := make([]*timetable.Record, 0)
	for key := range p.d.Keys(ctx.Done()) {
		pk := keyToPathTransform(key)
		if len(pk.Path) < 2 || pk.Path[0] != encoded || pk.Path[1] == slotBucket {
			continue
		}
		r, err := p.readRecord(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		if !start.IsZero() && r.Date.Before(start.Time) && !r.Date.Same(start) {
			continue
		}
		if !end.IsZero() && r.Date.After(end.Time) && !r.Date.Same(end) {
			continue
		}
		all = append(all, r)
	}
	sortRecords(all)
	return all
}

func (p *persistence) readRecord(key string) (*timetable.Record, error) {
	val, err := p.d.Read(key)
	if err != nil {
		return nil, err
	}
	r := &timetable.Record{}
	if err := json.Unmarshal(val, r); err != nil {
		return nil, err
	}
	r.ID = keyToPathTransform(key).FileName
	return r, nil
}

func (p *persistence) StoreRecord(r *timetable.Record) error {
	if r.StreamID == "" {
		return errors.New("store: record stream required")
	}
	if r.Date.IsZero() {
		return errors.New("store: record date required")
	}
	key := recordKey(r)
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return p.d.Write(key, data)
}

func (p *persistence) DeleteRecord(r *timetable.Record) error {
	if r.ID == "" {
		return errors.New("store: record id required")
	}
	return p.d.Erase(recordKey(r))
}

func (p *persistence) Streams(ctx context.Context) []timetable.Stream {
	all := make(map[string]timetable.Stream)
	if idx, err := p.loadStreamsIndex(); err == nil {
		for id, s := range idx {
			all[id] = s
		}
	} else {
		fmt.Fprintf(os.Stderr, "store: load streams index: %v\n", err)
	}

	// Streams only present as storage buckets still show up in the catalog.
	// The catalog file itself is enumerated too; it has no stream segment.
	for key := range p.d.Keys(ctx.Done()) {
		pk := keyToPathTransform(key)
		if len(pk.Path) == 0 || pk.Path[0] == "" {
			continue
		}
		id := fromStream(pk.Path[0])
		if id == "" || strings.HasPrefix(id, "fromStream:") {
			continue
		}
		if _, ok := all[id]; !ok {
			all[id] = timetable.Stream{ID: id}
		}
	}

	list := make([]timetable.Stream, 0, len(all))
	for _, s := range all {
		list = append(list, s)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

func (p *persistence) EnsureStream(s timetable.Stream) error {
	s.ID = strings.TrimSpace(s.ID)
	if s.ID == "" {
		return errors.New("store: stream id required")
	}
	if p.basePath == "" {
		return errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(filepath.Join(p.basePath, toStream(s.ID)), 0o755); err != nil {
		return fmt.Errorf("store: ensure stream directory: %w", err)
	}
	index, err := p.loadStreamsIndex()
	if err != nil {
		return fmt.Errorf("store: load streams index: %w", err)
	}
	existing := index[s.ID]
	if s.Name == "" {
		s.Name = existing.Name
	}
	index[s.ID] = s
	if err := p.saveStreamsIndex(index); err != nil {
		return fmt.Errorf("store: save streams index: %w", err)
	}
	return nil
}

func (p *persistence) streamsIndexPath() string {
	return filepath.Join(p.basePath, streamsIndexFile)
}

func (p *persistence) loadStreamsIndex() (map[string]timetable.Stream, error) {
	if p.basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.streamsIndexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]timetable.Stream), nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return make(map[string]timetable.Stream), nil
	}
	list, err := timetable.UnmarshalStreams(data)
	if err != nil {
		return nil, err
	}
	index := make(map[string]timetable.Stream, len(list))
	for _, s := range list {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			continue
		}
		s.ID = id
		index[id] = s
	}
	return index, nil
}

func (p *persistence) saveStreamsIndex(idx map[string]timetable.Stream) error {
	if p.basePath == "" {
		return errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return err
	}
	list := make([]timetable.Stream, 0, len(idx))
	for _, s := range idx {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	data, err := timetable.MarshalStreams(list)
	if err != nil {
		return err
	}
	path := p.streamsIndexPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func sortSlots(slots []*timetable.Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		left, right := slots[i], slots[j]
		if left.DayOfWeek != right.DayOfWeek {
			return left.DayOfWeek < right.DayOfWeek
		}
		if left.StartTime != right.StartTime {
			if left.StartTime == "" {
				return false
			}
			if right.StartTime == "" {
				return true
			}
			return left.StartTime < right.StartTime
		}
		return left.SubjectName < right.SubjectName
	})
}

func sortRecords(records []*timetable.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		left, right := records[i], records[j]
		if !left.Date.Same(right.Date) {
			return left.Date.Before(right.Date.Time)
		}
		if left.SubjectName != right.SubjectName {
			return left.SubjectName < right.SubjectName
		}
		return left.ID < right.ID
	})
}

// slotKey makes `stream-slot-id`.
func slotKey(sl *timetable.Slot) string {
	if sl.ID == "" {
		sl.ID = deriveID(sl)
	}
	return fmt.Sprintf("%s-%s-%s", toStream(sl.StreamID), slotBucket, sl.ID)
}

// recordKey makes `stream-date-id`.
func recordKey(r *timetable.Record) string {
	if r.ID == "" {
		r.ID = deriveID(r)
	}
	return fmt.Sprintf("%s-%s-%s", toStream(r.StreamID), r.Date.Format(layoutISO), r.ID)
}

func deriveID(v interface{}) string {
	b, _ := json.Marshal(v)
	id := md5.Sum(b)
	return fmt.Sprintf("%x", id[:8])
}

// streamEncoding is base64 over a filename-safe alphabet that also avoids the
// `-` key separator.
var streamEncoding = base64.NewEncoding(
	"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789._").WithPadding(base64.NoPadding)

func toStream(s string) string {
	return streamEncoding.EncodeToString([]byte(s))
}

func fromStream(s string) string {
	id, err := streamEncoding.DecodeString(s)
	if err != nil {
		return fmt.Sprintf("fromStream: %s", err)
	}
	return string(id)
}

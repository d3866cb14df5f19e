package state

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Builder holds a key/value state along with the deltas applied to it since
// the last Flush. Every write carries an ordinal, and ordinals never go
// backwards between two flushes, which lets readers look at the state as it
// was at any earlier ordinal of the current batch.
type Builder struct {
	Name string

	KV          map[string]Value // KV is the state, and assumes all Deltas were already applied to it.
	Deltas      []StateDelta     // Deltas since the last Flush.
	lastOrdinal uint64
}

type Value struct {
	// "kl" = set key, last key wins
	KeyType string
	Value   []byte
}

func (v Value) String() string {
	return string(v.Value)
}

func New(name string) *Builder {
	return &Builder{
		Name: name,
		KV:   make(map[string]Value),
	}
}

type StateDelta struct {
	Op       string // "c"reate, "u"pdate, "d"elete
	Ordinal  uint64 // a sorting key to order deltas, and provide pointers to changes midway
	Key      string
	KeyType  string
	OldValue []byte
	NewValue []byte
}

func (b *Builder) LastOrdinal() uint64 {
	return b.lastOrdinal
}

func (b *Builder) GetFirst(key string) (Value, bool) {
	for _, delta := range b.Deltas {
		if delta.Key == key {
			switch delta.Op {
			case "d", "u":
				return Value{Value: delta.OldValue, KeyType: delta.KeyType}, true
			case "c":
				return Value{}, false
			default:
				panic(fmt.Sprintf("invalid value %q for StateDelta::Op for key %q", delta.Op, delta.Key))
			}
		}
	}
	return b.GetLast(key)
}

func (b *Builder) GetLast(key string) (Value, bool) {
	val, found := b.KV[key]
	return val, found
}

// GetAt returns the key for the state that includes the processing of `ord`.
func (b *Builder) GetAt(ord uint64, key string) (out Value, found bool) {
	out, found = b.GetLast(key)

	for i := len(b.Deltas) - 1; i >= 0; i-- {
		delta := b.Deltas[i]
		if delta.Ordinal <= ord {
			break
		}
		if delta.Key == key {
			switch delta.Op {
			case "d", "u":
				out = Value{Value: delta.OldValue, KeyType: delta.KeyType}
				found = true
			case "c":
				out = Value{}
				found = false
			default:
				panic(fmt.Sprintf("invalid value %q for StateDelta::Op for key %q", delta.Op, delta.Key))
			}
		}
	}
	return
}

func (b *Builder) Del(ord uint64, key string) {
	b.bumpOrdinal(ord)

	val, found := b.GetLast(key)
	if found {
		delta := &StateDelta{
			Op:       "d",
			Ordinal:  ord,
			Key:      key,
			KeyType:  val.KeyType,
			OldValue: val.Value,
			NewValue: nil,
		}
		b.applyDelta(delta)
		b.Deltas = append(b.Deltas, *delta)
	}
}

func (b *Builder) bumpOrdinal(ord uint64) {
	if b.lastOrdinal > ord {
		panic("cannot Set or Del a value on a state.Builder with an ordinal lower than the previous")
	}
	b.lastOrdinal = ord
}

func (b *Builder) SetBytes(ord uint64, key string, value []byte) {
	b.set(ord, key, "kl", value)
}

func (b *Builder) Set(ord uint64, key string, value string) {
	b.set(ord, key, "kl", []byte(value))
}

func (b *Builder) set(ord uint64, key string, keyType string, value []byte) {
	b.bumpOrdinal(ord)

	val, found := b.GetLast(key)
	if found && keyType != val.KeyType {
		panic(fmt.Sprintf("key %q cannot change aggregation method", key))
	}

	var delta *StateDelta
	if found {
		if bytes.Equal(value, val.Value) {
			return
		}
		delta = &StateDelta{
			Op:       "u",
			Ordinal:  ord,
			Key:      key,
			KeyType:  keyType,
			OldValue: val.Value,
			NewValue: value,
		}
	} else {
		delta = &StateDelta{
			Op:       "c",
			Ordinal:  ord,
			Key:      key,
			KeyType:  keyType,
			OldValue: nil,
			NewValue: value,
		}
	}
	b.applyDelta(delta)
	b.Deltas = append(b.Deltas, *delta)
}

func (b *Builder) applyDelta(delta *StateDelta) {
	switch delta.Op {
	case "u", "c":
		b.KV[delta.Key] = Value{
			KeyType: delta.KeyType,
			Value:   delta.NewValue,
		}
	case "d":
		delete(b.KV, delta.Key)
	}
}

// Flush forgets the deltas, the KV already reflects them. Ordinals start over.
func (b *Builder) Flush() {
	if len(b.Deltas) > 0 {
		zlog.Debug("flushing state deltas", zap.String("store", b.Name), zap.Int("count", len(b.Deltas)))
	}
	b.Deltas = nil
	b.lastOrdinal = 0
}

// KeysWithPrefix returns the sorted keys currently set under prefix.
func (b *Builder) KeysWithPrefix(prefix string) []string {
	var out []string
	for k := range b.KV {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (b *Builder) Print() {
	if len(b.Deltas) == 0 {
		return
	}
	fmt.Printf("State deltas for %q\n", b.Name)
	for _, delta := range b.Deltas {
		b.PrintDelta(&delta)
	}
}

func (b *Builder) PrintDelta(delta *StateDelta) {
	WriteDelta(os.Stdout, delta)
}

func WriteDelta(w io.Writer, delta *StateDelta) {
	fmt.Fprintf(w, "  %s (o=%d, t=%s) KEY: %q\n", strings.ToUpper(delta.Op), delta.Ordinal, delta.KeyType, delta.Key)
	fmt.Fprintf(w, "    OLD: %s\n", string(delta.OldValue))
	fmt.Fprintf(w, "    NEW: %s\n", string(delta.NewValue))
}

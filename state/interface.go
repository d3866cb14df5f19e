package state

var (
	_ Reader = (*Builder)(nil)
	_ Writer = (*Builder)(nil)
)

type Reader interface {
	GetFirst(key string) (Value, bool)
	GetLast(key string) (Value, bool)
	GetAt(ord uint64, key string) (Value, bool)
}

type Writer interface {
	Set(ord uint64, key string, value string)
	SetBytes(ord uint64, key string, value []byte)
	Del(ord uint64, key string)
}

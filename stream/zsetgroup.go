package stream

import "github.com/streamhouse/dbsp/zset"

// ZSetGroup is the Group[*zset.ZSet[T]] witness used whenever a stream
// carries Z-sets, which is the overwhelmingly common case in this
// engine: the stream calculus is parametric in the group, but every
// concrete stream in the core carries Z-sets.
type ZSetGroup[T any] struct {
	KeyFn zset.KeyFunc[T]
}

func (g ZSetGroup[T]) Zero() *zset.ZSet[T] { return zset.New(g.KeyFn) }

func (g ZSetGroup[T]) Add(x, y *zset.ZSet[T]) (*zset.ZSet[T], error) { return x.Add(y) }

func (g ZSetGroup[T]) Negate(x *zset.ZSet[T]) *zset.ZSet[T] { return x.Negate() }

func (g ZSetGroup[T]) IsZero(x *zset.ZSet[T]) bool { return x.IsZero() }

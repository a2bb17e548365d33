package writer

import (
	"context"
	"errors"
)

type BatchWriter[T any] interface {
	BWrite(ctx context.Context, batch []T) error
	Close() error
}

// MultiWriter 把同一批数据依次写入多个下游，单个下游失败不影响其他下游
type MultiWriter[T any] struct {
	writers []BatchWriter[T]
}

func NewMultiWriter[T any](writers ...BatchWriter[T]) *MultiWriter[T] {
	return &MultiWriter[T]{writers: writers}
}

func (m *MultiWriter[T]) Len() int {
	return len(m.writers)
}

func (m *MultiWriter[T]) BWrite(ctx context.Context, batch []T) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.BWrite(ctx, batch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiWriter[T]) Close() error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package observer_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/streamhouse/dbsp/observer"
)

func TestHub(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Observer Hub Suite")
}

var _ = Describe("Hub", func() {
	It("delivers to subscribers in insertion order", func() {
		h := observer.New[int](nil)
		var order []int

		h.Subscribe(func(v int) error { order = append(order, 1); return nil })
		h.Subscribe(func(v int) error { order = append(order, 2); return nil })
		h.Subscribe(func(v int) error { order = append(order, 3); return nil })

		h.Publish(42)
		Expect(order).To(Equal([]int{1, 2, 3}))
	})

	It("isolates a panicking subscriber without blocking later subscribers", func() {
		h := observer.New[int](nil)
		delivered := false

		h.Subscribe(func(v int) error { panic("boom") })
		h.Subscribe(func(v int) error { delivered = true; return nil })

		Expect(func() { h.Publish(1) }).NotTo(Panic())
		Expect(delivered).To(BeTrue())
	})

	It("isolates an erroring subscriber without blocking later subscribers", func() {
		h := observer.New[int](nil)
		delivered := false

		h.Subscribe(func(v int) error { return errBoom })
		h.Subscribe(func(v int) error { delivered = true; return nil })

		h.Publish(1)
		Expect(delivered).To(BeTrue())
	})

	It("Unsubscribe stops further delivery to that subscriber", func() {
		h := observer.New[int](nil)
		count := 0
		sub := h.Subscribe(func(v int) error { count++; return nil })

		h.Publish(1)
		h.Unsubscribe(sub)
		h.Publish(2)

		Expect(count).To(Equal(1))
	})
})

var errBoom = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

package reactivetable_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/streamhouse/dbsp/circuit"
	"github.com/streamhouse/dbsp/reactivetable"
	"github.com/streamhouse/dbsp/zset"
)

func TestTable(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Reactive Table Suite")
}

type widget struct {
	ID    string
	Color string
}

func widgetKey(w widget) string { return w.ID + "|" + w.Color }

func identityCircuit() *circuit.Circuit[*zset.ZSet[widget], *zset.ZSet[widget]] {
	return circuit.Filter(func(widget) bool { return true })
}

var _ = Describe("Table", func() {
	It("Upsert of a brand new key produces a +1 insertion delta", func() {
		tbl := reactivetable.New[string, widget](widgetKey, identityCircuit(), nil)
		err := tbl.Upsert("w1", widget{"w1", "red"})
		Expect(err).NotTo(HaveOccurred())
		Expect(tbl.MaterializedView().Weight(widget{"w1", "red"})).To(Equal(int64(1)))
	})

	It("repeated Upsert of the identical value is a no-op delta", func() {
		tbl := reactivetable.New[string, widget](widgetKey, identityCircuit(), nil)
		Expect(tbl.Upsert("w1", widget{"w1", "red"})).To(Succeed())

		before := tbl.MaterializedView().TotalWeight()
		Expect(tbl.Upsert("w1", widget{"w1", "red"})).To(Succeed())
		after := tbl.MaterializedView().TotalWeight()

		Expect(after).To(Equal(before))
	})

	It("Upsert of a changed value retracts the old and inserts the new", func() {
		tbl := reactivetable.New[string, widget](widgetKey, identityCircuit(), nil)
		Expect(tbl.Upsert("w1", widget{"w1", "red"})).To(Succeed())
		Expect(tbl.Upsert("w1", widget{"w1", "blue"})).To(Succeed())

		view := tbl.MaterializedView()
		Expect(view.Weight(widget{"w1", "red"})).To(Equal(int64(0)))
		Expect(view.Weight(widget{"w1", "blue"})).To(Equal(int64(1)))
	})

	It("SafeRemove of an absent key returns an error", func() {
		tbl := reactivetable.New[string, widget](widgetKey, identityCircuit(), nil)
		err := tbl.SafeRemove("missing")
		Expect(err).To(HaveOccurred())
	})

	It("SafeRemove of a present key retracts it", func() {
		tbl := reactivetable.New[string, widget](widgetKey, identityCircuit(), nil)
		Expect(tbl.Upsert("w1", widget{"w1", "red"})).To(Succeed())
		Expect(tbl.SafeRemove("w1")).To(Succeed())
		Expect(tbl.MaterializedView().Weight(widget{"w1", "red"})).To(Equal(int64(0)))
	})

	It("Batch applies multiple ops as a single delta", func() {
		tbl := reactivetable.New[string, widget](widgetKey, identityCircuit(), nil)
		err := tbl.Batch([]reactivetable.TableOp[string, widget]{
			{Kind: reactivetable.OpUpsert, Key: "w1", Value: widget{"w1", "red"}},
			{Kind: reactivetable.OpUpsert, Key: "w2", Value: widget{"w2", "green"}},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(tbl.Len()).To(Equal(2))
	})

	It("Batch fails atomically if any removal targets a missing key", func() {
		tbl := reactivetable.New[string, widget](widgetKey, identityCircuit(), nil)
		Expect(tbl.Upsert("w1", widget{"w1", "red"})).To(Succeed())

		err := tbl.Batch([]reactivetable.TableOp[string, widget]{
			{Kind: reactivetable.OpRemove, Key: "w1"},
			{Kind: reactivetable.OpRemove, Key: "missing"},
		})
		Expect(err).To(HaveOccurred())
		// Nothing committed: w1 must still be present.
		Expect(tbl.Len()).To(Equal(1))
	})
})

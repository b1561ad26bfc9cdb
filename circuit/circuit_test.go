package circuit_test

import (
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/streamhouse/dbsp/circuit"
	"github.com/streamhouse/dbsp/zset"
)

func TestCircuit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Circuit Suite")
}

func strKey(s string) string { return s }

var _ = Describe("linear circuit composition", func() {
	It("composes filter then project", func() {
		filter := circuit.Filter(func(s string) bool { return len(s) > 1 })
		project := circuit.Project(func(s string) string { return s + "!" }, strKey)
		pipeline := circuit.Compose(filter, project)

		delta, _ := zset.FromRecords(strKey, []string{"a", "bb", "ccc"}, []int64{1, 1, 1})
		out, err := pipeline.Execute(delta)
		Expect(err).NotTo(HaveOccurred())

		Expect(out.Contains("bb!")).To(BeTrue())
		Expect(out.Contains("ccc!")).To(BeTrue())
		Expect(out.Contains("a!")).To(BeFalse())
	})
})

var _ = Describe("optimized incremental distinct", func() {
	It("emits +1 only when a key transitions to positive weight", func() {
		d := circuit.Distinct(strKey)

		delta1, _ := zset.FromRecords(strKey, []string{"x"}, []int64{2})
		out1, err := d.Execute(delta1)
		Expect(err).NotTo(HaveOccurred())
		Expect(out1.Weight("x")).To(Equal(int64(1)))

		delta2, _ := zset.FromRecords(strKey, []string{"x"}, []int64{1})
		out2, err := d.Execute(delta2)
		Expect(err).NotTo(HaveOccurred())
		Expect(out2.IsZero()).To(BeTrue(), "still positive, no membership flip")

		delta3, _ := zset.FromRecords(strKey, []string{"x"}, []int64{-3})
		out3, err := d.Execute(delta3)
		Expect(err).NotTo(HaveOccurred())
		Expect(out3.Weight("x")).To(Equal(int64(-1)))
	})
})

func pairKey(p zset.Pair[string, string]) string { return fmt.Sprintf("%s|%s", p.Left, p.Right) }

var _ = Describe("bilinear cartesian product", func() {
	It("matches Theorem 3.4's three-term delta formula", func() {
		c := circuit.Bilinear(func(a, b *zset.ZSet[string]) (*zset.ZSet[zset.Pair[string, string]], error) {
			return zset.CartesianProduct(a, b, pairKey)
		})

		a1, _ := zset.FromRecords(strKey, []string{"x"}, []int64{1})
		b1, _ := zset.FromRecords(strKey, []string{"y"}, []int64{1})
		out1, err := c.Execute(a1, b1)
		Expect(err).NotTo(HaveOccurred())
		Expect(out1.Weight(zset.Pair[string, string]{Left: "x", Right: "y"})).To(Equal(int64(1)))

		a2, _ := zset.FromRecords(strKey, []string{"z"}, []int64{1})
		b2 := zset.New[string](strKey)
		out2, err := c.Execute(a2, b2)
		Expect(err).NotTo(HaveOccurred())
		// z is new on the left; it should now join against the
		// previously accumulated "y" on the right (I(B)_prev term).
		Expect(out2.Weight(zset.Pair[string, string]{Left: "z", Right: "y"})).To(Equal(int64(1)))
	})
})

var _ = Describe("union and difference", func() {
	It("union is idempotent under repeated identical deltas", func() {
		u := circuit.Union[string](strKey)
		a, _ := zset.FromRecords(strKey, []string{"p"}, []int64{1})
		b := zset.New[string](strKey)

		out1, err := u.Execute(a, b)
		Expect(err).NotTo(HaveOccurred())
		Expect(out1.Weight("p")).To(Equal(int64(1)))

		out2, err := u.Execute(a, b)
		Expect(err).NotTo(HaveOccurred())
		Expect(out2.IsZero()).To(BeTrue())
	})

	It("difference excludes members that later appear on the right", func() {
		diff := circuit.Difference[string](strKey)
		a, _ := zset.FromRecords(strKey, []string{"p", "q"}, []int64{1, 1})
		out1, err := diff.Execute(a, zset.New[string](strKey))
		Expect(err).NotTo(HaveOccurred())
		Expect(out1.Contains("p")).To(BeTrue())
		Expect(out1.Contains("q")).To(BeTrue())

		b, _ := zset.FromRecords(strKey, []string{"q"}, []int64{1})
		out2, err := diff.Execute(zset.New[string](strKey), b)
		Expect(err).NotTo(HaveOccurred())
		Expect(out2.Weight("q")).To(Equal(int64(-1)))
	})
})

package querybuilder_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/streamhouse/dbsp/querybuilder"
	"github.com/streamhouse/dbsp/zset"
)

func TestQueryBuilder(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "QueryBuilder Suite")
}

func strKey(s string) string { return s }

var _ = Describe("Builder", func() {
	It("compiles Select + Project into a working circuit", func() {
		b := querybuilder.New[string](strKey).Select(func(s string) bool { return len(s) > 1 })
		projected := querybuilder.Project(b, func(s string) string { return s + "!" }, strKey)

		c := projected.Build()
		delta, _ := zset.FromRecords(strKey, []string{"a", "bb"}, []int64{1, 1})
		out, err := c.Execute(delta)
		Expect(err).NotTo(HaveOccurred())

		Expect(out.Contains("bb!")).To(BeTrue())
		Expect(out.Contains("a!")).To(BeFalse())
	})

	It("compiles Distinct so repeated positive deltas emit nothing further", func() {
		b := querybuilder.New[string](strKey).Distinct()
		c := b.Build()

		delta, _ := zset.FromRecords(strKey, []string{"x"}, []int64{1})
		_, err := c.Execute(delta)
		Expect(err).NotTo(HaveOccurred())

		out2, err := c.Execute(delta)
		Expect(err).NotTo(HaveOccurred())
		Expect(out2.IsZero()).To(BeTrue())
	})
})

type order struct {
	ID, Customer string
}

type customer struct{ ID, Name string }

func orderKey(o order) string       { return o.ID }
func customerKey(c customer) string { return c.ID }

var _ = Describe("Join", func() {
	It("joins two builder pipelines on a shared key", func() {
		orders := querybuilder.New[order](orderKey)
		customers := querybuilder.New[customer](customerKey)

		joined := querybuilder.Join[order, customer, string](
			orders, customers,
			func(o order) string { return o.Customer },
			func(c customer) string { return c.ID },
			func(s string) string { return s },
			func(p zset.Pair[order, customer]) string { return p.Left.ID + "|" + p.Right.ID },
			nil,
		)

		c := joined.Build()
		ordersDelta, _ := zset.FromRecords(orderKey, []order{{"o1", "c1"}}, []int64{1})
		customersDelta, _ := zset.FromRecords(customerKey, []customer{{"c1", "Alice"}}, []int64{1})

		out, err := c.Execute(ordersDelta, customersDelta)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Size()).To(Equal(1))
	})
})

package zset_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/streamhouse/dbsp/zset"
)

type person struct {
	Name string
	Dept string
	Age  int
}

func personKey(p person) string { return p.Name }
func deptKey(d string) string   { return d }
func pairKey(p zset.Pair[person, string]) string {
	return fmt.Sprintf("%s|%s", p.Left.Name, p.Right)
}

var _ = Describe("join and cartesian product", func() {
	var people *zset.ZSet[person]
	var depts *zset.ZSet[string]

	BeforeEach(func() {
		var err error
		people, err = zset.FromRecords(personKey,
			[]person{{"alice", "eng", 30}, {"bob", "sales", 25}},
			[]int64{1, 1})
		Expect(err).NotTo(HaveOccurred())

		depts, err = zset.FromRecords(deptKey, []string{"eng", "sales"}, []int64{1, 1})
		Expect(err).NotTo(HaveOccurred())
	})

	It("equi-joins on matching department", func() {
		joined, err := zset.EquiJoin(people, depts,
			func(p person) string { return p.Dept },
			func(d string) string { return d },
			deptKey, pairKey)
		Expect(err).NotTo(HaveOccurred())
		Expect(joined.Size()).To(Equal(2))
		Expect(joined.Weight(zset.Pair[person, string]{Left: people.Entries()[0].Value, Right: "eng"})).To(Equal(int64(1)))
	})

	It("cartesian product multiplies weights", func() {
		a, _ := zset.FromRecords(deptKey, []string{"x"}, []int64{2})
		b, _ := zset.FromRecords(deptKey, []string{"y"}, []int64{3})
		prod, err := zset.CartesianProduct(a, b, func(p zset.Pair[string, string]) string {
			return p.Left + p.Right
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(prod.Weight(zset.Pair[string, string]{Left: "x", Right: "y"})).To(Equal(int64(6)))
	})

	It("intersect takes the minimum weight", func() {
		a, _ := zset.FromRecords(deptKey, []string{"eng"}, []int64{5})
		b, _ := zset.FromRecords(deptKey, []string{"eng"}, []int64{2})
		i := zset.Intersect(a, b)
		Expect(i.Weight("eng")).To(Equal(int64(2)))
	})
})

var _ = Describe("group-by and top-k", func() {
	It("group-by partitions records by key", func() {
		z, _ := zset.FromRecords(personKey,
			[]person{{"alice", "eng", 30}, {"bob", "eng", 40}, {"carol", "sales", 22}},
			[]int64{1, 1, 1})

		groups := zset.GroupBy(z, func(p person) string { return p.Dept })
		Expect(groups).To(HaveLen(2))
		Expect(groups["eng"].Size()).To(Equal(2))
		Expect(groups["sales"].Size()).To(Equal(1))
	})

	It("top-k returns the k largest by the given comparator, stable on ties", func() {
		z, _ := zset.FromRecords(personKey,
			[]person{{"alice", "eng", 30}, {"bob", "eng", 30}, {"carol", "sales", 50}},
			[]int64{1, 1, 1})

		top := zset.TopK(z, func(a, b person) bool { return a.Age > b.Age }, 0, 2)
		Expect(top.Size()).To(Equal(2))
		Expect(top.Contains(person{"carol", "sales", 50})).To(BeTrue())
	})

	It("top-k drops non-positive weights before ranking and forces survivors to weight 1", func() {
		z, _ := zset.FromRecords(personKey,
			[]person{{"alice", "eng", 30}, {"bob", "eng", 40}, {"carol", "sales", 50}},
			[]int64{-5, 2, 7})

		top := zset.TopK(z, func(a, b person) bool { return a.Age > b.Age }, 0, 1)
		Expect(top.Size()).To(Equal(1))
		Expect(top.Contains(person{"alice", "eng", 30})).To(BeFalse())
		Expect(top.Weight(person{"carol", "sales", 50})).To(Equal(int64(1)))

		topTwo := zset.TopK(z, func(a, b person) bool { return a.Age > b.Age }, 0, 2)
		Expect(topTwo.Weight(person{"bob", "eng", 40})).To(Equal(int64(1)))
	})

	It("average is undefined on the empty z-set", func() {
		z := zset.New[person](personKey)
		_, ok := zset.Average(z, func(p person) float64 { return float64(p.Age) })
		Expect(ok).To(BeFalse())
	})
})

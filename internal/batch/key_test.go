package batch_test

import (
	"math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/frahmantamala/ewaste-management/internal/batch"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var keyPattern = regexp.MustCompile(`^[A-Z0-9]{0,3}-([0-9]{1,3})-[A-Z0-9]{0,4}-[0-9]{8}$`)

var _ = Describe("KeyGenerator", func() {
	christmas := time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC)

	Describe("abbreviations", func() {
		DescribeTable("NameAbbreviation",
			func(name, expected string) {
				Expect(batch.NameAbbreviation(name)).To(Equal(expected))
			},
			Entry("three words", "GE Aviation IT Equipment", "GAI"),
			Entry("lowercase", "city hospital", "CH"),
			Entry("extra whitespace", "  north \t campus  ", "NC"),
			Entry("empty", "", ""),
			Entry("whitespace only", "   ", ""),
			Entry("non ascii initial", "école normale", "ÉN"),
		)

		DescribeTable("LocationAbbreviation",
			func(location, expected string) {
				Expect(batch.LocationAbbreviation(location)).To(Equal(expected))
			},
			Entry("commas periods hyphens", "Cincinnati, OH - Building A", "COBA"),
			Entry("truncates to four", "1 Main St. Suite 200, Springfield", "1MSS"),
			Entry("runs of separators", "A,,..--B", "AB"),
			Entry("empty", "", ""),
		)

		It("formats the date as MMDDYYYY", func() {
			Expect(batch.FormatKeyDate(christmas)).To(Equal("12252024"))
			Expect(batch.FormatKeyDate(time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC))).To(Equal("03042025"))
		})
	})

	Describe("Generate", func() {
		It("composes the documented example", func() {
			gen := batch.NewKeyGenerator()
			key := gen.Generate("GE Aviation IT Equipment", "Cincinnati, OH - Building A", christmas)
			Expect(key).To(MatchRegexp(`^GAI-[0-9]{1,3}-COBA-12252024$`))
		})

		It("keeps the sequence within 1..999", func() {
			gen := batch.NewKeyGeneratorWithSource(rand.NewSource(42), nil)
			for i := 0; i < 2000; i++ {
				key := gen.Generate("Acme Corp", "Dayton", christmas)
				m := keyPattern.FindStringSubmatch(key)
				Expect(m).NotTo(BeNil(), key)
				Expect(len(m[1])).To(BeNumerically("<=", 3))
				Expect(m[1]).NotTo(Equal("0"))
			}
		})

		It("is reproducible for a pinned source", func() {
			a := batch.NewKeyGeneratorWithSource(rand.NewSource(7), nil)
			b := batch.NewKeyGeneratorWithSource(rand.NewSource(7), nil)
			Expect(a.Generate("X Y", "Z", christmas)).To(Equal(b.Generate("X Y", "Z", christmas)))
		})
	})

	Describe("Fallback", func() {
		It("uses the name abbreviation and a timestamp", func() {
			now := time.Unix(1700000000, 0)
			gen := batch.NewKeyGeneratorWithSource(rand.NewSource(1), func() time.Time { return now })
			Expect(gen.Fallback("GE Aviation IT")).To(Equal("GAI-1700000000000000000"))
		})

		It("never repeats when the clock stalls", func() {
			frozen := time.Unix(1700000000, 0)
			gen := batch.NewKeyGeneratorWithSource(rand.NewSource(1), func() time.Time { return frozen })

			seen := map[string]bool{}
			for i := 0; i < 100; i++ {
				k := gen.Fallback("Acme")
				Expect(seen).NotTo(HaveKey(k))
				seen[k] = true
			}
		})

		It("stays unique across goroutines", func() {
			gen := batch.NewKeyGenerator()
			var (
				mu   sync.Mutex
				wg   sync.WaitGroup
				seen = map[string]bool{}
			)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					k := gen.Fallback("Acme")
					mu.Lock()
					defer mu.Unlock()
					Expect(seen).NotTo(HaveKey(k))
					seen[k] = true
				}()
			}
			wg.Wait()
			Expect(seen).To(HaveLen(50))
		})
	})
})

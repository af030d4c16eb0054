package sqlitevec_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/figmatch/figmatch/pkg/catalog"
	"github.com/figmatch/figmatch/pkg/matcher"
	"github.com/figmatch/figmatch/pkg/matcher/sqlitevec"
	"github.com/figmatch/figmatch/pkg/parts"
)

// unit returns v scaled to unit L2 norm.
func unit(v ...float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func writeCatalog(dir string, category parts.Category, filenames []string, embeddings [][]float32) {
	payload := map[string]any{
		"filenames":  filenames,
		"embeddings": embeddings,
	}
	data, err := json.Marshal(payload)
	Expect(err).NotTo(HaveOccurred())

	path := filepath.Join(dir, fmt.Sprintf("%s_embeddings.json", category))
	Expect(os.WriteFile(path, data, 0o644)).To(Succeed())
}

var _ = Describe("SQLiteVecMatcher", func() {
	var (
		logger   *zap.Logger
		tmpDir   string
		catalogs *catalog.Store
	)

	BeforeEach(func() {
		logger = zap.NewNop()

		var err error
		tmpDir, err = os.MkdirTemp("", "sqlitevec-test-*")
		Expect(err).NotTo(HaveOccurred())

		writeCatalog(tmpDir, parts.Head, []string{
			"head_3001.png",
			"head_3002.png",
			"head_3003.png",
		}, [][]float32{
			unit(1, 0, 0, 0),
			unit(0, 1, 0, 0),
			unit(1, 1, 0, 0),
		})
		writeCatalog(tmpDir, parts.Torso, []string{
			"torso_973pb1.png",
			"torso_973pb2.png",
		}, [][]float32{
			unit(0, 0, 1, 0),
			unit(0, 0, 0, 1),
		})
		writeCatalog(tmpDir, parts.Legs, []string{
			"legs_970c00.png",
			"legs_970c01.png",
		}, [][]float32{
			unit(1, 0, 1, 0),
			unit(0, 1, 0, 1),
		})

		catalogs, err = catalog.NewStore(tmpDir, logger)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(catalogs.Close()).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	Describe("NewSQLiteVecMatcher", func() {
		It("should return an error when DBPath is empty", func() {
			_, err := sqlitevec.NewSQLiteVecMatcher(sqlitevec.Config{DBPath: ""}, catalogs, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database path is required"))
		})

		It("should create a matcher over an in-memory database", func() {
			m, err := sqlitevec.NewSQLiteVecMatcher(sqlitevec.Config{DBPath: ":memory:"}, catalogs, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(m).NotTo(BeNil())
			Expect(m.Close()).To(Succeed())
		})

		It("should fail when a category catalog is missing", func() {
			Expect(os.Remove(filepath.Join(tmpDir, "legs_embeddings.json"))).To(Succeed())

			_, err := sqlitevec.NewSQLiteVecMatcher(sqlitevec.Config{DBPath: ":memory:"}, catalogs, logger)
			Expect(err).To(HaveOccurred())
			Expect(err).To(MatchError(catalog.ErrNotFound))
		})
	})

	Describe("Interface compliance", func() {
		It("should implement matcher.Matcher", func() {
			var _ matcher.Matcher = (*sqlitevec.SQLiteVecMatcher)(nil)
		})
	})

	Describe("Match", func() {
		var m *sqlitevec.SQLiteVecMatcher

		BeforeEach(func() {
			var err error
			m, err = sqlitevec.NewSQLiteVecMatcher(sqlitevec.Config{DBPath: ":memory:"}, catalogs, logger)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(m.Close()).To(Succeed())
		})

		It("should return the closest entry first", func() {
			results, err := m.Match(context.Background(), parts.Head, unit(1, 0, 0, 0), 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].Filename).To(Equal("head_3001.png"))
		})

		It("should recover cosine similarity from L2 distance", func() {
			results, err := m.Match(context.Background(), parts.Head, unit(1, 0, 0, 0), 3)
			Expect(err).NotTo(HaveOccurred())

			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-4))
			// cos between (1,0,0,0) and normalized (1,1,0,0) is 1/sqrt(2)
			Expect(results[1].Filename).To(Equal("head_3003.png"))
			Expect(results[1].Score).To(BeNumerically("~", 1.0/math.Sqrt2, 1e-4))
			Expect(results[2].Score).To(BeNumerically("~", 0.0, 1e-4))
		})

		It("should return scores in descending order", func() {
			results, err := m.Match(context.Background(), parts.Legs, unit(1, 1, 1, 1), 2)
			Expect(err).NotTo(HaveOccurred())
			for i := 1; i < len(results); i++ {
				Expect(results[i-1].Score).To(BeNumerically(">=", results[i].Score))
			}
		})

		It("should break score ties by catalog order", func() {
			// Query equidistant from both torso entries.
			results, err := m.Match(context.Background(), parts.Torso, unit(0, 0, 1, 1), 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].Filename).To(Equal("torso_973pb1.png"))
			Expect(results[1].Filename).To(Equal("torso_973pb2.png"))
		})

		It("should return all entries when k exceeds the catalog size", func() {
			results, err := m.Match(context.Background(), parts.Torso, unit(0, 0, 1, 0), 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
		})

		It("should reject k below one", func() {
			_, err := m.Match(context.Background(), parts.Head, unit(1, 0, 0, 0), 0)
			Expect(err).To(MatchError(matcher.ErrInvalidK))
		})
	})

	Describe("Close", func() {
		It("should close the database connection", func() {
			m, err := sqlitevec.NewSQLiteVecMatcher(sqlitevec.Config{DBPath: ":memory:"}, catalogs, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Close()).To(Succeed())
		})
	})
})

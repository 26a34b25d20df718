package mongostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

func TestPatchUpdate(t *testing.T) {
	t.Run("count only", func(t *testing.T) {
		update := patchUpdate(domain.ProductPatch{CheckCount: 3})
		assert.Equal(t, bson.M{"$set": bson.M{"check_count": 3}}, update)
	})

	t.Run("with composition", func(t *testing.T) {
		update := patchUpdate(domain.ProductPatch{
			CheckCount: 2,
			Composition: &domain.ProductRecord{
				URL:              "https://shop.example/p/1",
				Fibers:           []domain.FiberEntry{{Name: "linen", Percentage: 100}},
				CompositionGrade: domain.GradeNatural,
			},
		})

		set, ok := update["$set"].(bson.M)
		require.True(t, ok)
		assert.Len(t, set, 8)
		assert.NotContains(t, set, "url")
		assert.Equal(t, domain.GradeNatural, set["composition_grade"])
	})
}

func TestProductRecordBSON(t *testing.T) {
	record := domain.ProductRecord{
		URL:              "https://shop.example/p/1",
		Title:            "Shirt",
		CompositionGrade: domain.GradeMixed,
		Fibers:           []domain.FiberEntry{{Name: "cotton", Percentage: 55}, {Name: "polyester", Percentage: 45}},
		CheckCount:       7,
	}

	data, err := bson.Marshal(record)
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.Equal(t, "https://shop.example/p/1", raw["url"])
	assert.Equal(t, int32(7), raw["check_count"])
	assert.Contains(t, raw, "composition_grade")

	var decoded domain.ProductRecord
	require.NoError(t, bson.Unmarshal(data, &decoded))
	assert.Equal(t, record, decoded)
}

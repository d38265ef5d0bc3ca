package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGalleryListsApprovedNewestFirst(t *testing.T) {
	f := newAPIFixture(t)

	rec, resp := f.do(t, http.MethodGet, "/v1/artworks?limit=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		Total      int64 `json:"total"`
		PageSize   int   `json:"pageSize"`
		TotalPages int   `json:"totalPages"`
	}
	decodeData(t, resp, &page)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "art2", page.Items[0].ID)

	rec, _ = f.do(t, http.MethodGet, "/v1/artworks?sort=random", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

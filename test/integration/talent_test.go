package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"gocast_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type talentJSON struct {
	ID         string `json:"id"`
	Nom        string `json:"nom"`
	TrancheAge string `json:"tranche_age"`
	Statut     string `json:"statut"`
	Photos     []struct {
		ID         string `json:"id"`
		Expression string `json:"expression"`
		URL        string `json:"url"`
	} `json:"photos"`
	CV *struct {
		URL      string `json:"url"`
		MimeType string `json:"mimeType"`
	} `json:"cv"`
}

func getTalent(t *testing.T, ts *helpers.TestServer, id string) talentJSON {
	t.Helper()
	res, body := ts.SendRequest(t, http.MethodGet, "/api/talents/"+id, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var out talentJSON
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestTalentCRUD(t *testing.T) {
	ts := helpers.NewTestServer(t)
	token, _ := helpers.CreateAndLoginAdmin(t, ts, "admin", "password123")

	t.Run("Create requires auth", func(t *testing.T) {
		res, _ := ts.SendRequest(t, http.MethodPost, "/api/talents", "", map[string]string{"nom": "X"})
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("Create validation", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/talents", token, map[string]string{
			"nom": "Durand", "prenom": "Alice", "date_naissance": "14/07/1995", "specialite": "Danseur",
		})
		require.Equal(t, http.StatusBadRequest, res.StatusCode, body)
		assert.Contains(t, body, "date_naissance")
		assert.Contains(t, body, "specialite")
	})

	id := helpers.CreateTalent(t, ts, token, map[string]string{"tranche_age": "Senior"})

	t.Run("Age bracket is derived", func(t *testing.T) {
		talent := getTalent(t, ts, id)
		assert.Equal(t, "Adulte", talent.TrancheAge)
		assert.Equal(t, "Actif", talent.Statut)
	})

	t.Run("Update", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodPut, "/api/talents/"+id, token, map[string]string{
			"nom": "Durand-Petit", "date_naissance": "2020-01-01",
		})
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		talent := getTalent(t, ts, id)
		assert.Equal(t, "Durand-Petit", talent.Nom)
		assert.Equal(t, "Enfant", talent.TrancheAge)
	})

	t.Run("List with filters", func(t *testing.T) {
		helpers.CreateTalent(t, ts, token, map[string]string{"nom": "Roux", "specialite": "Mannequin"})

		res, body := ts.SendRequest(t, http.MethodGet, "/api/talents?specialite=Mannequin", "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)
		var list []talentJSON
		require.NoError(t, json.Unmarshal([]byte(body), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "Roux", list[0].Nom)

		res, _ = ts.SendRequest(t, http.MethodGet, "/api/talents?order=sideways", "", nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("Delete", func(t *testing.T) {
		res, body := ts.SendRequest(t, http.MethodDelete, "/api/talents/"+id, token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, body)

		res, _ = ts.SendRequest(t, http.MethodGet, "/api/talents/"+id, "", nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		res, _ = ts.SendRequest(t, http.MethodDelete, "/api/talents/"+id, token, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

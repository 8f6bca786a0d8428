package helpers

import (
	"encoding/json"
	"net/http"
	"testing"

	"gocast_backend/internal/auth"
	"gocast_backend/internal/models"

	"github.com/stretchr/testify/require"
)

// CreateAndLoginAdmin inserts an admin and logs in through the API.
func CreateAndLoginAdmin(t *testing.T, ts *TestServer, username, password string) (string, *models.Admin) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	admin := &models.Admin{Username: username, PasswordHash: hash}
	require.NoError(t, ts.DB.Create(admin).Error)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &login))
	require.NotEmpty(t, login.Token)
	return login.Token, admin
}

// CreateTalent creates a talent through the API and returns its id.
func CreateTalent(t *testing.T, ts *TestServer, token string, fields map[string]string) string {
	t.Helper()

	body := map[string]string{
		"nom":            "Durand",
		"prenom":         "Alice",
		"date_naissance": "1995-07-14",
		"specialite":     "Acteur",
	}
	for k, v := range fields {
		body[k] = v
	}

	res, resBody := ts.SendRequest(t, http.MethodPost, "/api/talents", token, body)
	require.Equal(t, http.StatusCreated, res.StatusCode, resBody)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(resBody), &created))
	require.NotEmpty(t, created.ID)
	return created.ID
}

package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expressivart/internal/domain/entity"
	"expressivart/pkg/errors"
)

func TestConversationRoutesRequireToken(t *testing.T) {
	f := newAPIFixture(t)

	rec, resp := f.do(t, http.MethodGet, "/v1/conversations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, errors.CodeAuthRequired, resp.Error.Code)

	rec, resp = f.do(t, http.MethodGet, "/v1/conversations", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errors.CodeUnauthorized, resp.Error.Code)
}

func TestResolveConversationIsIdempotent(t *testing.T) {
	f := newAPIFixture(t)

	rec, resp := f.do(t, http.MethodPost, "/v1/conversations/resolve", "token-buyer1", map[string]string{"artwork_id": "art1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var first entity.Conversation
	decodeData(t, resp, &first)
	assert.Equal(t, "seller1", first.SellerID)
	assert.Equal(t, "buyer1", first.BuyerID)

	_, resp = f.do(t, http.MethodPost, "/v1/conversations/resolve", "token-buyer1", map[string]string{"artwork_id": "art1", "seller_id": "seller1"})
	var second entity.Conversation
	decodeData(t, resp, &second)
	assert.Equal(t, first.ID, second.ID)

	rec, resp = f.do(t, http.MethodPost, "/v1/conversations/resolve", "token-seller1", map[string]string{"artwork_id": "art1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.CodeResolveFailed, resp.Error.Code)

	rec, resp = f.do(t, http.MethodPost, "/v1/conversations/resolve", "token-buyer1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestSendAndReadMessages(t *testing.T) {
	f := newAPIFixture(t)

	_, resp := f.do(t, http.MethodPost, "/v1/conversations/resolve", "token-buyer1", map[string]string{"artwork_id": "art1"})
	var conversation entity.Conversation
	decodeData(t, resp, &conversation)
	path := "/v1/conversations/" + conversation.ID

	rec, resp := f.do(t, http.MethodPost, path+"/messages", "token-buyer1", map[string]string{"content": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.CodeSendFailed, resp.Error.Code)

	rec, resp = f.do(t, http.MethodPost, path+"/messages", "token-buyer1", map[string]string{"content": strings.Repeat("x", 4001)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.CodeSendFailed, resp.Error.Code)

	rec, _ = f.do(t, http.MethodPost, path+"/messages", "token-buyer1", map[string]string{"content": "Is it framed?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, _ = f.do(t, http.MethodPost, path+"/messages", "token-seller1", map[string]string{"content": "It is."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, resp = f.do(t, http.MethodGet, path+"/messages", "token-seller1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var messages []entity.MessageView
	decodeData(t, resp, &messages)
	require.Len(t, messages, 2)
	assert.Equal(t, "Is it framed?", messages[0].Content)
	assert.Equal(t, entity.SideOther, messages[0].Side)
	assert.Equal(t, entity.SideSelf, messages[1].Side)

	rec, resp = f.do(t, http.MethodPut, path+"/read", "token-seller1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var marked map[string]int
	decodeData(t, resp, &marked)
	assert.Equal(t, 1, marked["marked_read"])

	rec, resp = f.do(t, http.MethodGet, path, "token-buyer2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, errors.CodeForbidden, resp.Error.Code)

	rec, resp = f.do(t, http.MethodGet, "/v1/conversations", "token-seller1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	decodeData(t, resp, &list)
	assert.Len(t, list, 1)
}

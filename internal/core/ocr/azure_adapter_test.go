package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

const layoutResult = `{
  "status": "succeeded",
  "analyzeResult": {
    "pages": [
      {"pageNumber": 1, "lines": [{"content": "Invoice"}], "words": [{"confidence": 0.9}, {"confidence": 0.7}]},
      {"pageNumber": 2, "lines": [], "words": [{"confidence": 0.8}]}
    ],
    "paragraphs": [
      {"content": "ACME Corp", "role": "pageHeader", "spans": [{"offset": 0, "length": 9}], "boundingRegions": [{"pageNumber": 1}]},
      {"content": "Invoice 42", "spans": [{"offset": 10, "length": 10}], "boundingRegions": [{"pageNumber": 1}]},
      {"content": "Item", "spans": [{"offset": 21, "length": 4}], "boundingRegions": [{"pageNumber": 2}]},
      {"content": "Total due on receipt.", "spans": [{"offset": 40, "length": 21}], "boundingRegions": [{"pageNumber": 2}]}
    ],
    "tables": [
      {"rowCount": 2, "columnCount": 2, "spans": [{"offset": 21, "length": 18}], "boundingRegions": [{"pageNumber": 2}],
       "cells": [
         {"rowIndex": 0, "columnIndex": 0, "content": "Item"},
         {"rowIndex": 0, "columnIndex": 1, "content": "Price"},
         {"rowIndex": 1, "columnIndex": 0, "content": "Bolt"},
         {"rowIndex": 1, "columnIndex": 1, "content": "3.00"}
       ]}
    ]
  }
}`

func TestAzureAdapter_SubmitAndPoll(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/documentintelligence/documentModels/prebuilt-layout:analyze", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("Ocp-Apim-Subscription-Key"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "JVBERg==", body["base64Source"])
		w.Header().Set("Operation-Location", srv.URL+"/operations/1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/operations/1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"status":"running"}`))
			return
		}
		_, _ = w.Write([]byte(layoutResult))
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	a, err := NewAzureAdapter(AzureConfig{Endpoint: srv.URL + "/", Key: "secret", PollInterval: time.Millisecond}, srv.Client())
	require.NoError(t, err)

	doc, err := a.NormalizeDocument(context.Background(), core.Source{Name: "scan.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)

	assert.Equal(t, int32(2), polls.Load())
	assert.Equal(t, models.ProviderAzure, doc.Metadata.Provider)
	assert.Equal(t, 2, doc.Metadata.TotalPages)
	assert.InDelta(t, 0.8, doc.Metadata.ConfidenceScore, 1e-9)

	require.Len(t, doc.Pages, 2)
	assert.Equal(t, []string{"Invoice 42"}, doc.Pages[0].TextBlocks)
	assert.Equal(t, []string{"Total due on receipt."}, doc.Pages[1].TextBlocks)
	require.Len(t, doc.Pages[1].Tables, 1)
	assert.Equal(t, [][]string{{"Item", "Price"}, {"Bolt", "3.00"}}, doc.Pages[1].Tables[0].Rows)
}

func TestAzureAdapter_FailedOperation(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Header().Set("Operation-Location", srv.URL+"/op")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		_, _ = w.Write([]byte(`{"status":"failed","error":{"code":"InvalidContent","message":"corrupt"}}`))
	}))
	defer srv.Close()

	a, err := NewAzureAdapter(AzureConfig{Endpoint: srv.URL, Key: "k", PollInterval: time.Millisecond}, srv.Client())
	require.NoError(t, err)
	_, err = a.NormalizeDocument(context.Background(), core.Source{Data: []byte("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrProvider)
	assert.Contains(t, err.Error(), "InvalidContent")
}

func TestAzureAdapter_RejectedSubmission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	a, err := NewAzureAdapter(AzureConfig{Endpoint: srv.URL, Key: "k"}, srv.Client())
	require.NoError(t, err)
	_, err = a.NormalizeDocument(context.Background(), core.Source{Data: []byte("x")})
	assert.ErrorIs(t, err, core.ErrProvider)
}

func TestNewAzureAdapter_RequiresCredentials(t *testing.T) {
	_, err := NewAzureAdapter(AzureConfig{Endpoint: "https://x"}, nil)
	assert.Error(t, err)
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

// Manual smoke script for a locally running instance:
//
//	go run scripts/smoke_scribe_api.go
//
// Requires SMOKE_TOKEN (a valid user JWT) in the environment.

const baseURL = "http://localhost:3000/api"

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // Streams can run long, no timeout
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func step(name string) {
	color.Cyan("\n=== %s ===", name)
}

func checkStatus(resp *http.Response, body []byte, want int) bool {
	if resp.StatusCode == want {
		color.Green("OK (%d)", resp.StatusCode)
		return true
	}
	color.Red("FAIL: got %d, want %d", resp.StatusCode, want)
	fmt.Println(string(body))
	return false
}

func main() {
	token := os.Getenv("SMOKE_TOKEN")
	if token == "" {
		color.Red("SMOKE_TOKEN is required")
		os.Exit(1)
	}

	generatePayload := map[string]interface{}{
		"context": map[string]interface{}{
			"age":      "45",
			"sex":      "M",
			"modality": "presencial",
		},
		"profile": map[string]interface{}{
			"full_name": "Dr. Smoke",
			"specialty": "Medicina general",
		},
		"transcript": "Paciente refiere dolor torácico opresivo de dos horas de evolución, irradiado a brazo izquierdo. Toma warfarina. Hoy tomó ibuprofeno por cefalea.",
	}

	step("POST /scribe/v1/generate")
	resp, body, err := sendRequest("POST", "/scribe/v1/generate", token, generatePayload)
	if err != nil {
		color.Red("request error: %v", err)
		os.Exit(1)
	}
	checkStatus(resp, body, http.StatusOK)

	step("POST /scribe/v1/generate (second call must be rejected)")
	resp, body, _ = sendRequest("POST", "/scribe/v1/generate", token, generatePayload)
	checkStatus(resp, body, http.StatusConflict)

	step("GET /scribe/v1/session (poll until COMPLETED)")
	for i := 0; i < 120; i++ {
		resp, body, err = sendRequest("GET", "/scribe/v1/session", token, nil)
		if err != nil {
			color.Red("request error: %v", err)
			os.Exit(1)
		}
		var envelope struct {
			Data struct {
				State string `json:"state"`
			} `json:"data"`
		}
		json.Unmarshal(body, &envelope)
		if envelope.Data.State == "COMPLETED" || envelope.Data.State == "FAILED" {
			color.Green("terminal state: %s", envelope.Data.State)
			break
		}
	}

	step("POST /scribe/v1/transcript")
	resp, body, _ = sendRequest("POST", "/scribe/v1/transcript", token, map[string]interface{}{
		"context":    generatePayload["context"],
		"transcript": "Paciente refiere dolor torácico opresivo. Niega disnea por ahora.",
	})
	checkStatus(resp, body, http.StatusAccepted)

	step("GET /scribe/v1/suggestions")
	resp, body, _ = sendRequest("GET", "/scribe/v1/suggestions", token, nil)
	if checkStatus(resp, body, http.StatusOK) {
		var v interface{}
		json.Unmarshal(body, &v)
		prettyPrint(v)
	}

	step("GET /history/v1")
	resp, body, _ = sendRequest("GET", "/history/v1", token, nil)
	if checkStatus(resp, body, http.StatusOK) {
		var v interface{}
		json.Unmarshal(body, &v)
		prettyPrint(v)
	}

	step("POST /scribe/v1/generate (missing context must be 422)")
	resp, body, _ = sendRequest("POST", "/scribe/v1/generate", token, map[string]interface{}{
		"context":    map[string]interface{}{"age": "45"},
		"transcript": "Texto",
	})
	checkStatus(resp, body, http.StatusUnprocessableEntity)

	color.Cyan("\nSmoke run finished")
}

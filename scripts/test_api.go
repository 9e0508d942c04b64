package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const (
	baseURL   = "http://localhost:8000/api/v1"
	webURL    = "https://en.wikipedia.org/wiki/Retrieval-augmented_generation"
	pollEvery = 2 * time.Second
	maxPolls  = 90
)

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
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

	client := &http.Client{} // No timeout, LLM calls can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

// Form helper for the multipart ingest endpoint
func sendForm(url string, fields map[string]string) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		writer.WriteField(key, value)
	}
	writer.Close()

	req, err := http.NewRequest("POST", baseURL+url, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

// Polls the status endpoint until the session leaves the given state.
func waitWhileStatus(sessionID, busy string) (map[string]interface{}, error) {
	var last map[string]interface{}
	for i := 0; i < maxPolls; i++ {
		_, body, err := sendRequest("GET", "/ingest/status/"+sessionID, nil)
		if err != nil {
			return nil, err
		}
		last = map[string]interface{}{}
		json.Unmarshal(body, &last)
		status, _ := last["status"].(string)
		if status != busy {
			return last, nil
		}
		fmt.Printf("  still %s: %v\n", status, last["message"])
		time.Sleep(pollEvery)
	}
	return last, fmt.Errorf("session stuck in %q after %d polls", busy, maxPolls)
}

func main() {
	color.Cyan("🚀 Starting RAG Chat API Smoke Test\n")

	// 1. Ingest a web page
	color.Yellow("\n[INGEST] 1. Submit Web URL")
	resp, body, err := sendForm("/ingest/", map[string]string{"web_url": webURL})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var ingestResp map[string]interface{}
	json.Unmarshal(body, &ingestResp)
	prettyPrint(ingestResp)

	sessionID, _ := ingestResp["session_id"].(string)
	if sessionID == "" {
		color.Red("No session_id in ingest response, aborting")
		os.Exit(1)
	}
	fmt.Printf("Session ID: %s\n", sessionID)

	// 2. Poll until ingestion finishes
	color.Yellow("\n[INGEST] 2. Wait For Processing")
	statusResp, err := waitWhileStatus(sessionID, "processing")
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if status, _ := statusResp["status"].(string); status == "error" {
		color.Red("Ingestion failed: %v", statusResp["message"])
		os.Exit(1)
	}
	color.Green("Ingestion done")
	prettyPrint(statusResp)

	// 3. Chat against the ingested content
	color.Yellow("\n[CHAT] 3. Ask A Question")
	chatReq := map[string]interface{}{
		"question": "What problem does retrieval-augmented generation solve?",
	}
	resp, body, err = sendRequest("POST", "/chat/"+sessionID, chatReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var chatResp map[string]interface{}
	json.Unmarshal(body, &chatResp)
	// Concise printing to avoid dumping full resource snippets
	if answer, ok := chatResp["answer"].(string); ok {
		fmt.Printf("Answer: %s\n", answer)
		if resources, ok := chatResp["resources"].([]interface{}); ok {
			fmt.Printf("Resources: %d\n", len(resources))
		}
	} else {
		prettyPrint(chatResp)
	}

	// 4. Chat with a bogus model name, the API should answer with a hint
	color.Yellow("\n[CHAT] 4. Ask With An Invalid Model")
	chatReq = map[string]interface{}{
		"question": "Does this still work?",
		"model":    "not-a-real/model",
	}
	resp, body, err = sendRequest("POST", "/chat/"+sessionID, chatReq)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("Status: %s", resp.Status)
		var hintResp map[string]interface{}
		json.Unmarshal(body, &hintResp)
		if answer, ok := hintResp["answer"].(string); ok {
			fmt.Printf("Answer: %s\n", answer)
		} else {
			prettyPrint(hintResp)
		}
	}

	// 5. Generate FAQs from the ingested content
	color.Yellow("\n[FAQ] 5. Request FAQ Generation")
	resp, body, err = sendRequest("POST", "/faq/generate/"+sessionID, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var faqResp map[string]interface{}
	json.Unmarshal(body, &faqResp)
	prettyPrint(faqResp)

	color.Yellow("\n[FAQ] 6. Wait For FAQ Generation")
	statusResp, err = waitWhileStatus(sessionID, "faq_processing")
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if status, _ := statusResp["status"].(string); status == "error" {
		color.Red("FAQ generation failed: %v", statusResp["message"])
		os.Exit(1)
	}
	color.Green("FAQ generation done")

	// 7. Fetch the full session document
	color.Yellow("\n[SESSION] 7. Fetch Session Document")
	resp, body, err = sendRequest("GET", "/session/"+sessionID, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var sessionResp map[string]interface{}
	json.Unmarshal(body, &sessionResp)
	fmt.Printf("Status: %v\n", sessionResp["status"])
	fmt.Printf("Message: %v\n", sessionResp["message"])
	fmt.Printf("Context ready: %v\n", sessionResp["context_is_ready"])
	if namespaces, ok := sessionResp["active_namespaces"].([]interface{}); ok {
		fmt.Printf("Namespaces: %v\n", namespaces)
	}
	if faqs, ok := sessionResp["generated_faqs"].([]interface{}); ok {
		fmt.Printf("FAQs: %d\n", len(faqs))
		for i, raw := range faqs {
			if faq, ok := raw.(map[string]interface{}); ok {
				fmt.Printf("  %d. %v\n", i+1, faq["question"])
			}
		}
	}
	if history, ok := sessionResp["chat_history"].([]interface{}); ok {
		fmt.Printf("Chat turns: %d\n", len(history))
	}

	color.Cyan("\n✅ Smoke Test Complete")
}

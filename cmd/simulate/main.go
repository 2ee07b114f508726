package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

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

	client := &http.Client{} // streaming endpoints set their own pace
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

// streamChat posts one analyst turn and prints the SSE deltas as they land.
func streamChat(sessionID, caseID, message string) error {
	payload := map[string]interface{}{
		"session_id": sessionID,
		"case_id":    caseID,
		"message":    message,
	}
	jsonBody, _ := json.Marshal(payload)

	resp, err := http.Post(baseURL+"/chat/v1", "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			fmt.Println()
			return nil
		}
		var chunk struct {
			Delta string `json:"delta"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if chunk.Error != "" {
			return fmt.Errorf("stream error: %s", chunk.Error)
		}
		fmt.Print(chunk.Delta)
	}
	fmt.Println()
	return scanner.Err()
}

func main() {
	color.Cyan("Starting AEGIS shift walkthrough\n")

	// 1. Create a session
	color.Yellow("\n1. Create session")
	resp, body, err := sendRequest("POST", "/session/v1", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var createResp struct {
		Data struct {
			SessionId string `json:"session_id"`
		} `json:"data"`
	}
	json.Unmarshal(body, &createResp)
	sessionID := createResp.Data.SessionId
	if sessionID == "" {
		color.Red("No session id in response")
		os.Exit(1)
	}
	fmt.Printf("Session: %s\n", sessionID)

	// 2. List the case queue
	color.Yellow("\n2. List cases")
	resp, body, err = sendRequest("GET", "/case/v1", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var listResp struct {
		Data struct {
			Cases []struct {
				Id    string `json:"id"`
				Title string `json:"title"`
			} `json:"cases"`
			Total int `json:"total"`
		} `json:"data"`
	}
	json.Unmarshal(body, &listResp)
	fmt.Printf("Queue holds %d cases\n", listResp.Data.Total)
	if len(listResp.Data.Cases) < 2 {
		color.Red("Need at least two cases for the walkthrough")
		os.Exit(1)
	}
	first := listResp.Data.Cases[0].Id
	second := listResp.Data.Cases[1].Id

	// 3. Approve the first case
	color.Yellow("\n3. Approve case %s", first)
	resp, body, _ = sendRequest("POST", "/session/v1/"+sessionID+"/approve", map[string]interface{}{
		"case_id": first,
	})
	color.Green("Status: %s", resp.Status)

	// 4. Advance to the second case
	color.Yellow("\n4. Advance")
	resp, body, _ = sendRequest("POST", "/session/v1/"+sessionID+"/advance", nil)
	color.Green("Status: %s", resp.Status)

	// 5. Disagree on the second case; decisions now demand engagement
	color.Yellow("\n5. Disagree on case %s", second)
	resp, body, _ = sendRequest("POST", "/session/v1/"+sessionID+"/disagree", map[string]interface{}{
		"case_id": second,
	})
	color.Green("Status: %s", resp.Status)

	// 5a. An override attempt before engaging must bounce with 409
	color.Yellow("\n5a. Premature override (expect 409)")
	resp, body, _ = sendRequest("POST", "/session/v1/"+sessionID+"/override", map[string]interface{}{
		"case_id":       second,
		"justification": "too early",
	})
	if resp.StatusCode == http.StatusConflict {
		color.Green("Correctly refused: %s", resp.Status)
	} else {
		color.Red("Expected 409, got %s", resp.Status)
	}

	// 6. Engage with the assistant for three turns
	questions := []string{
		"Walk me through the strongest signal behind this recommendation.",
		"The subject's statement contradicts the narrative. How do you weigh it?",
		"What happens to the subject if I follow your recommendation?",
	}
	for i, q := range questions {
		color.Yellow("\n6.%d ANALYST: %s", i+1, q)
		if err := streamChat(sessionID, second, q); err != nil {
			color.Red("Chat failed: %v", err)
			os.Exit(1)
		}
	}

	// 7. Override now that the gate is open
	color.Yellow("\n7. Override case %s", second)
	resp, body, _ = sendRequest("POST", "/session/v1/"+sessionID+"/override", map[string]interface{}{
		"case_id":       second,
		"justification": "The defense statement directly contradicts the flagged signal.",
	})
	color.Green("Status: %s", resp.Status)
	var overrideResp map[string]interface{}
	json.Unmarshal(body, &overrideResp)
	prettyPrint(overrideResp)

	// 8. Final summary
	color.Yellow("\n8. Session summary")
	resp, body, _ = sendRequest("GET", "/session/v1/"+sessionID, nil)
	color.Green("Status: %s", resp.Status)
	var summaryResp map[string]interface{}
	json.Unmarshal(body, &summaryResp)
	prettyPrint(summaryResp)

	color.Cyan("\nWalkthrough complete")
}

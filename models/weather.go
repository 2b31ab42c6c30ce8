package models

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/storeops/shiftdesk_backend/config"
)

var weatherClient = &http.Client{Timeout: 5 * time.Second}

type weatherResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		Weathercode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// captureWeather fetches a current-conditions snapshot and stores it on the
// shift row. Runs in its own goroutine after commit; any failure is logged
// and swallowed, the shift is never blocked on it.
func captureWeather(shiftId int, column string, lat float64, lng float64) {
	if lat == 0 && lng == 0 {
		return
	}
	logger := config.GetLogger()

	baseUrl := os.Getenv("WEATHER_API_URL")
	if baseUrl == "" {
		baseUrl = "https://api.open-meteo.com/v1/forecast"
	}
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current_weather=true", baseUrl, lat, lng)

	resp, err := weatherClient.Get(url)
	if err != nil {
		config.LogWarn(logger, "weather.go", "captureWeather", fmt.Sprintf("fetch shift %d", shiftId), err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		config.LogWarn(logger, "weather.go", "captureWeather", fmt.Sprintf("fetch shift %d", shiftId), fmt.Errorf("status %d", resp.StatusCode))
		return
	}

	var body weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		config.LogWarn(logger, "weather.go", "captureWeather", fmt.Sprintf("decode shift %d", shiftId), err)
		return
	}
	snapshot := fmt.Sprintf("%.1f°C code=%d", body.CurrentWeather.Temperature, body.CurrentWeather.Weathercode)

	db := config.GetDB()
	if err := db.Model(&Shift{}).Where("id = ?", shiftId).
		Update(column, snapshot).Error; err != nil {
		config.LogWarn(logger, "weather.go", "captureWeather", fmt.Sprintf("save shift %d", shiftId), err)
	}
}

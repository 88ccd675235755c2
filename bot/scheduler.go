package bot

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"sentinel-bot/utils"
)

var c *cron.Cron

// startScheduler starts the cron jobs: hourly window sweeps, a daily
// enforcement summary and incident retention cleanup.
func startScheduler(b *Bot) {
	log.Println("Initializing scheduler...")
	c = cron.New()

	_, err := c.AddFunc("@hourly", func() {
		b.Engine.Windows().Sweep(time.Now())
		log.Printf("Window sweep done, %d authors tracked", b.Engine.Windows().TrackedAuthors())
	})
	if err != nil {
		log.Fatalf("Could not set up window sweep job: %v", err)
	}

	// Summary of yesterday's enforcement, shortly after midnight UTC.
	_, err = c.AddFunc("10 0 * * *", func() {
		postDailySummary(b)
	})
	if err != nil {
		log.Fatalf("Could not set up daily summary job: %v", err)
	}

	_, err = c.AddFunc("@daily", func() {
		b.Store.CleanupOldIncidents()
	})
	if err != nil {
		log.Fatalf("Could not set up cleanup job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started.")
}

// stopScheduler stops the cron jobs.
func stopScheduler() {
	if c != nil {
		c.Stop()
		log.Println("Scheduler stopped.")
	}
}

// postDailySummary posts yesterday's per-guild enforcement counts to the
// admin channels.
func postDailySummary(b *Bot) {
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	stats, err := b.Store.StatsForDate(yesterday)
	if err != nil {
		log.Printf("Could not load daily stats for %s: %v", yesterday, err)
		return
	}
	if len(stats) == 0 {
		log.Printf("No enforcement activity on %s, skipping summary", yesterday)
		return
	}

	for _, st := range stats {
		utils.Info("Security", "DailySummary",
			fmt.Sprintf("%s guild %s: %d watchlisted, %d deleted, %d banned",
				st.Date, st.GuildID, st.Watchlisted, st.Deleted, st.Banned))
	}
}

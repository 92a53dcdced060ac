//go:build ignore

package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hugh/flowboard/internal/auth"
	"github.com/hugh/flowboard/internal/database"
	"github.com/hugh/flowboard/internal/database/models"
	"github.com/hugh/flowboard/pkg/config"
	"github.com/hugh/flowboard/pkg/util"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	username := os.Getenv("DEMO_USERNAME")
	email := os.Getenv("DEMO_EMAIL")
	password := os.Getenv("DEMO_PASSWORD")

	if username == "" {
		username = "demo"
	}
	if email == "" {
		email = "demo@example.com"
	}
	if password == "" {
		password = "demo123"
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var user models.User
	err = db.Where("username = ?", username).First(&user).Error
	switch {
	case err == nil:
		fmt.Printf("Demo user already exists: %s\n", username)
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through and create
	default:
		log.Fatalf("failed to look up demo user: %v", err)
	}

	user = models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsVerified:   true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create demo user: %v", err)
	}

	board := models.Board{
		Name:    "Main Project",
		Color:   models.DefaultBoardColor,
		OwnerID: user.ID,
	}
	if err := db.Create(&board).Error; err != nil {
		log.Fatalf("failed to create demo board: %v", err)
	}

	laneTitles := []string{"To Do", "In Progress", "Review", "Done"}
	lanes := make([]models.Lane, 0, len(laneTitles))
	for i, title := range laneTitles {
		lane := models.Lane{
			Title:    title,
			Position: float64(i + 1),
			BoardID:  board.ID,
		}
		if err := db.Create(&lane).Error; err != nil {
			log.Fatalf("failed to create lane %q: %v", title, err)
		}
		lanes = append(lanes, lane)
	}

	categories := []models.Category{
		{Name: "Bug", Color: "#EF4444"},
		{Name: "Feature", Color: "#3B82F6"},
		{Name: "Enhancement", Color: "#10B981"},
		{Name: "Documentation", Color: "#F59E0B"},
		{Name: "Urgent", Color: "#DC2626"},
	}
	for i := range categories {
		if err := db.Where("name = ?", categories[i].Name).FirstOrCreate(&categories[i]).Error; err != nil {
			log.Fatalf("failed to create category %q: %v", categories[i].Name, err)
		}
	}

	cards := []struct {
		lane       int
		title      string
		desc       string
		position   float64
		categories []int
	}{
		{0, "Set up project workspace", "Clone the repository and configure the environment.", 1, []int{3}},
		{0, "Design the data model", "Sketch the board, lane and card relationships.", 2, []int{1}},
		{1, "Implement drag and drop", "Cards should reorder within and across lanes.", 1, []int{1, 2}},
		{2, "Fix login redirect loop", "Session expires mid-request and bounces forever.", 1, []int{0, 4}},
		{3, "Initial release", "Tag v0.1.0 and publish the changelog.", 1, nil},
	}
	for _, c := range cards {
		card := models.Card{
			Title:       c.title,
			Description: c.desc,
			Position:    c.position,
			LaneID:      lanes[c.lane].ID,
		}
		if err := db.Create(&card).Error; err != nil {
			log.Fatalf("failed to create card %q: %v", c.title, err)
		}
		for _, ci := range c.categories {
			if err := db.Model(&card).Association("Categories").Append(&categories[ci]); err != nil {
				log.Fatalf("failed to tag card %q: %v", c.title, err)
			}
		}
	}

	fmt.Printf("Demo data created successfully!\n")
	fmt.Printf("Username: %s\n", username)
	fmt.Printf("Password: %s\n", password)
	fmt.Printf("Board: %s (%d lanes, %d cards)\n", board.Name, len(lanes), len(cards))
}

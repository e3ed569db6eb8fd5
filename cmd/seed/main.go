package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pdolan/connectra/internal/store"
	"github.com/pdolan/connectra/internal/types"
)

// seed populates a fresh database file with demo users, a global public
// chat with some traffic, clips and blogs.
func main() {
	var (
		dataFile string
		userN    int
		clipN    int
		blogN    int
	)
	flag.StringVar(&dataFile, "data-file", "database/userbase.json", "path to the JSON database file")
	flag.IntVar(&userN, "users", 10, "number of demo users")
	flag.IntVar(&clipN, "clips", 5, "number of demo clips")
	flag.IntVar(&blogN, "blogs", 3, "number of demo blogs")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	logger := log.New(os.Stderr, "[connectra-seed] ", log.LstdFlags)

	if err := os.MkdirAll(filepath.Dir(dataFile), 0o755); err != nil {
		logger.Fatal("create database directory:", err)
	}

	s, err := store.NewFileStore(dataFile)
	if err != nil {
		logger.Fatal("open store:", err)
	}

	pwdHash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("hash password:", err)
	}

	var users []types.User
	for range userN {
		user, err := s.CreateAccount(store.CreateAccountParams{
			FullName: gofakeit.Name(),
			Email:    gofakeit.Email(),
			Password: string(pwdHash),
		})
		if err != nil {
			logger.Println("create account:", err)
			continue
		}
		users = append(users, user)
		logger.Printf("created user %q (%s)", user.Username, user.Email)
	}

	if len(users) < 2 {
		logger.Fatal("not enough users seeded")
	}

	global, err := s.CreateChat(types.Chat{
		Id:        "global",
		Name:      "Global Chat",
		Type:      types.ChatTypePublic,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		logger.Fatal("create global chat:", err)
	}

	for i := range 20 {
		author := users[i%len(users)]
		content := gofakeit.Sentence(8)
		err := s.AppendMessage(global.Id, types.Message{
			Id:          uuid.NewString(),
			UserId:      author.Id,
			Username:    author.Username,
			Content:     content,
			RawContent:  content,
			Mentions:    []string{},
			Timestamp:   time.Now().UTC(),
			Type:        "text",
			Attachments: []types.Attachment{},
		})
		if err != nil {
			logger.Fatal("append message:", err)
		}
	}

	for i := range clipN {
		author := users[i%len(users)]
		clipId := uuid.NewString()
		_, err := s.CreateClip(types.Clip{
			Id:            clipId,
			Title:         gofakeit.BookTitle(),
			Description:   gofakeit.Sentence(12),
			VideoFilename: clipId + ".mp4",
			Thumbnail:     clipId + "_thumb.jpg",
			Author:        author.Username,
			CreatedAt:     time.Now().UTC().Add(-time.Duration(i) * time.Hour),
			Comments:      []types.Comment{},
		})
		if err != nil {
			logger.Fatal("create clip:", err)
		}
	}

	for i := range blogN {
		author := users[i%len(users)]
		now := time.Now().UTC()
		_, err := s.CreateBlog(types.Blog{
			Id:        uuid.NewString(),
			Title:     gofakeit.Sentence(4),
			Content:   gofakeit.Paragraph(3, 4, 12, "\n\n"),
			Author:    author.Username,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			logger.Fatal("create blog:", err)
		}
	}

	// A little social graph so profiles aren't empty.
	for i, u := range users {
		if _, err := s.ToggleFollow(u.Username, users[(i+1)%len(users)].Username); err != nil {
			logger.Println("follow:", err)
		}
	}

	fmt.Printf("seeded %s: %d users, %d clips, %d blogs\n", dataFile, len(users), clipN, blogN)
}

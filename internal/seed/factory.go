// Package seed creates demo data for development and testing. Nothing in
// here is meant to run against a production database.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"relay/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the login password every seeded account gets.
const DefaultPassword = "password123"

const emailDomain = "stu.cu.edu.ng"

var colleges = []models.College{
	models.CollegeCOE,
	models.CollegeCST,
	models.CollegeCMSS,
	models.CollegeCLDS,
}

var departmentsByCollege = map[models.College][]string{
	models.CollegeCOE:  {"Civil Engineering", "Electrical Engineering", "Mechanical Engineering", "Petroleum Engineering"},
	models.CollegeCST:  {"Computer Science", "Architecture", "Biochemistry", "Mathematics"},
	models.CollegeCMSS: {"Accounting", "Business Administration", "Economics", "Mass Communication"},
	models.CollegeCLDS: {"Leadership Studies", "Political Science", "Psychology", "Sociology"},
}

// Factory builds unsaved domain entities with plausible campus content.
type Factory struct {
	faker *gofakeit.Faker
	rng   *rand.Rand

	skipBcrypt bool
	hashed     string
	usernames  map[string]int
}

// NewFactory returns a Factory driven by the given random seed so runs are
// reproducible. skipBcrypt swaps the real hash for a throwaway constant,
// which matters when seeding thousands of users.
func NewFactory(randomSeed int64, skipBcrypt bool) *Factory {
	f := &Factory{
		faker:      gofakeit.New(randomSeed),
		rng:        rand.New(rand.NewSource(randomSeed)),
		skipBcrypt: skipBcrypt,
		usernames:  make(map[string]int),
	}
	if skipBcrypt {
		f.hashed = "$2a$04$seededaccountnotforauthxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		f.hashed = string(hash)
	}
	return f
}

// User builds a campus account with a unique username and a valid email.
func (f *Factory) User() *models.User {
	first := strings.ToLower(f.faker.FirstName())
	last := strings.ToLower(f.faker.LastName())
	username := first + "." + last
	if n := f.usernames[username]; n > 0 {
		username = fmt.Sprintf("%s%d", username, 100+f.rng.Intn(900))
	}
	f.usernames[first+"."+last]++

	college := colleges[f.rng.Intn(len(colleges))]
	departments := departmentsByCollege[college]

	return &models.User{
		Username:       username,
		Email:          username + "@" + emailDomain,
		DisplayName:    f.faker.FirstName() + " " + f.faker.LastName(),
		Role:           models.UserRoleStudent,
		College:        college,
		Department:     departments[f.rng.Intn(len(departments))],
		Bio:            f.faker.Sentence(8),
		Interests:      models.StringList{f.faker.Hobby(), f.faker.Hobby()},
		HashedPassword: f.hashed,
		CreatedAt:      f.pastTime(180),
	}
}

// Community builds a community owned by the given creator.
func (f *Factory) Community(creator *models.User, name string, kind models.CommunityType) *models.Community {
	return &models.Community{
		Name:        name,
		Description: f.faker.Sentence(12),
		Type:        kind,
		CreatorID:   creator.ID,
		CreatedAt:   f.pastTime(365),
	}
}

// Post builds a post of the given type with the type-specific fields filled
// in, spread over the recent past so trending has something to rank.
func (f *Factory) Post(author *models.User, postType models.PostType) *models.Post {
	post := &models.Post{
		Type:      postType,
		Title:     strings.TrimSuffix(f.faker.Sentence(5), "."),
		Content:   f.faker.Paragraph(1, 3, 8, "\n"),
		AuthorID:  author.ID,
		Status:    models.PostStatusActive,
		Tags:      models.StringList{f.faker.BuzzWord(), f.faker.BuzzWord()},
		CreatedAt: f.pastTime(45),
	}

	switch postType {
	case models.PostTypeEvent:
		when := time.Now().Add(time.Duration(1+f.rng.Intn(30)) * 24 * time.Hour)
		post.EventDate = &when
		post.EventTime = fmt.Sprintf("%d:00 PM", 1+f.rng.Intn(8))
		post.Location = f.faker.Company() + " Hall"
	case models.PostTypeMarketplace:
		post.Price = fmt.Sprintf("₦%d", 500*(1+f.rng.Intn(200)))
		post.Condition = f.pick("New", "Barely used", "Used", "For parts")
		post.ContactInfo = f.faker.Phone()
	case models.PostTypeLink, models.PostTypeNews:
		post.LinkURL = f.faker.URL()
	case models.PostTypeOpportunity, models.PostTypeBounty:
		deadline := time.Now().Add(time.Duration(7+f.rng.Intn(60)) * 24 * time.Hour)
		post.Deadline = &deadline
	case models.PostTypeLostAndFound:
		post.Location = f.pick("Library", "Cafeteria", "Lecture Theatre", "Chapel", "Hostel Block B")
		post.ContactInfo = f.faker.Phone()
	}

	return post
}

// Comment builds a comment on the given post.
func (f *Factory) Comment(author *models.User, post *models.Post) *models.Comment {
	return &models.Comment{
		Content:   f.faker.Sentence(10),
		PostID:    post.ID,
		AuthorID:  author.ID,
		CreatedAt: post.CreatedAt.Add(time.Duration(f.rng.Intn(72)) * time.Hour),
	}
}

func (f *Factory) pick(options ...string) string {
	return options[f.rng.Intn(len(options))]
}

func (f *Factory) pastTime(maxDays int) time.Time {
	back := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

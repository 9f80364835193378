package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/lexcase/lexcase-backend/config"
	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/internal/app/repository"
	"github.com/lexcase/lexcase-backend/internal/db"
	"github.com/lexcase/lexcase-backend/pkg/util"
	"github.com/lib/pq"
	"github.com/xuri/excelize/v2"
)

// Imports demo users and cases from an xlsx workbook.
// Sheet "Users": email | name | role | password
// Sheet "Cases": case_number | title | description | parties (semicolon separated) | creator_email
func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// DB 연결
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	caseRepo := repository.NewCaseRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	users, err := readUsers(f)
	if err != nil {
		log.Fatal("Failed to read users:", err)
	}
	cases, err := readCases(f)
	if err != nil {
		log.Fatal("Failed to read cases:", err)
	}

	fmt.Printf("Users to import: %d, cases to import: %d\n", len(users), len(cases))

	// 사용자 확인
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	emailToID := make(map[string]uint, len(users))
	for i := range users {
		if err := userRepo.Create(&users[i]); err != nil {
			log.Fatal("Failed to create user:", err)
		}
		emailToID[users[i].Email] = users[i].ID
	}

	imported := 0
	for i := range cases {
		creatorID, ok := emailToID[cases[i].creatorEmail]
		if !ok {
			existing, err := userRepo.FindByEmail(cases[i].creatorEmail)
			if err != nil {
				fmt.Printf("Skipping case %s: unknown creator %s\n", cases[i].c.CaseNumber, cases[i].creatorEmail)
				continue
			}
			creatorID = existing.ID
		}
		cases[i].c.CreatedBy = creatorID
		if err := caseRepo.Create(&cases[i].c); err != nil {
			log.Fatal("Failed to create case:", err)
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Users imported: %d, cases imported: %d\n", len(users), imported)
}

func readUsers(f *excelize.File) ([]model.User, error) {
	rows, err := f.GetRows("Users")
	if err != nil {
		return nil, fmt.Errorf("failed to read Users sheet: %w", err)
	}

	var users []model.User
	for i, row := range rows {
		if i == 0 || len(row) < 4 {
			// 헤더 또는 불완전한 행 스킵
			continue
		}

		email := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		role := strings.TrimSpace(row[2])
		password := row[3]
		if email == "" || name == "" {
			continue
		}

		hash, err := util.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", email, err)
		}

		users = append(users, model.User{
			Email:        email,
			PasswordHash: hash,
			Name:         name,
			Role:         model.UserRole(role),
		})
	}

	return users, nil
}

type seedCase struct {
	c            model.Case
	creatorEmail string
}

func readCases(f *excelize.File) ([]seedCase, error) {
	rows, err := f.GetRows("Cases")
	if err != nil {
		return nil, fmt.Errorf("failed to read Cases sheet: %w", err)
	}

	var cases []seedCase
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}

		caseNumber := strings.TrimSpace(row[0])
		title := strings.TrimSpace(row[1])
		if caseNumber == "" || title == "" {
			continue
		}

		var parties pq.StringArray
		for _, party := range strings.Split(row[3], ";") {
			if p := strings.TrimSpace(party); p != "" {
				parties = append(parties, p)
			}
		}

		cases = append(cases, seedCase{
			c: model.Case{
				CaseNumber:  caseNumber,
				Title:       title,
				Description: strings.TrimSpace(row[2]),
				Parties:     parties,
				Status:      model.CaseStatusOpen,
			},
			creatorEmail: strings.TrimSpace(row[4]),
		})
	}

	return cases, nil
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/workload-api/internal/dto"
	"github.com/noah-isme/workload-api/internal/models"
	appErrors "github.com/noah-isme/workload-api/pkg/errors"
)

// seedFile is the fixture format accepted by `workloadctl seed`.
type seedFile struct {
	Staff    []seedStaff   `yaml:"staff"`
	Programs []seedProgram `yaml:"programs"`
	Subjects []seedSubject `yaml:"subjects"`
}

type seedStaff struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
	Role     string `yaml:"role"`
	// Program is the name_th of a program in the same file.
	Program string `yaml:"program"`
}

type seedProgram struct {
	NameTH      string `yaml:"name_th"`
	DegreeLevel string `yaml:"degree_level"`
	FoundedYear *int   `yaml:"founded_year"`
	Chair       string `yaml:"chair"`
}

type seedSubject struct {
	Code        string `yaml:"code"`
	NameTH      string `yaml:"name_th"`
	NameEN      string `yaml:"name_en"`
	Credit      string `yaml:"credit"`
	Program     string `yaml:"program"`
	Responsible string `yaml:"responsible"`
}

func parseSeed(r io.Reader) (*seedFile, error) {
	var file seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &file, nil
}

type staffSeeder interface {
	Create(ctx context.Context, req dto.CreateStaffRequest, actor *models.JWTClaims) (*models.User, error)
	Update(ctx context.Context, id string, req dto.UpdateStaffRequest, actor *models.JWTClaims) (*models.User, error)
}

type emailLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type programSeeder interface {
	List(ctx context.Context) ([]models.Program, error)
	Create(ctx context.Context, req dto.ProgramRequest, actor *models.JWTClaims) (*models.Program, error)
}

type subjectSeeder interface {
	Create(ctx context.Context, req dto.SubjectRequest, actor *models.JWTClaims) (*models.Subject, error)
}

type seeder struct {
	staff    staffSeeder
	users    emailLookup
	programs programSeeder
	subjects subjectSeeder
	logger   *zap.Logger
}

type seedSummary struct {
	Staff, Programs, Subjects, Skipped int
}

// apply loads staff first, then programs (chairs resolve by email), then links
// staff to programs, then subjects.
func (s *seeder) apply(ctx context.Context, file *seedFile) (seedSummary, error) {
	var summary seedSummary
	userIDs := make(map[string]string, len(file.Staff))

	for _, entry := range file.Staff {
		email := strings.ToLower(strings.TrimSpace(entry.Email))
		existing, err := s.users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			userIDs[email] = existing.ID
			summary.Skipped++
			continue
		case !errors.Is(err, sql.ErrNoRows):
			return summary, fmt.Errorf("look up %s: %w", email, err)
		}
		user, err := s.staff.Create(ctx, dto.CreateStaffRequest{
			Email:    email,
			Password: entry.Password,
			FullName: entry.FullName,
			Role:     models.UserRole(strings.ToUpper(entry.Role)),
		}, nil)
		if err != nil {
			return summary, fmt.Errorf("staff %s: %w", email, err)
		}
		userIDs[email] = user.ID
		summary.Staff++
	}

	current, err := s.programs.List(ctx)
	if err != nil {
		return summary, fmt.Errorf("list programs: %w", err)
	}
	programIDs := make(map[string]string, len(current)+len(file.Programs))
	for _, program := range current {
		programIDs[program.NameTH] = program.ID
	}

	for _, entry := range file.Programs {
		if _, ok := programIDs[entry.NameTH]; ok {
			summary.Skipped++
			continue
		}
		req := dto.ProgramRequest{NameTH: entry.NameTH, DegreeLevel: strings.ToUpper(entry.DegreeLevel), FoundedYear: entry.FoundedYear}
		if entry.Chair != "" {
			chairID, err := lookup(userIDs, strings.ToLower(entry.Chair), "chair")
			if err != nil {
				return summary, fmt.Errorf("program %s: %w", entry.NameTH, err)
			}
			req.ProgramChairID = &chairID
		}
		program, err := s.programs.Create(ctx, req, nil)
		if err != nil {
			return summary, fmt.Errorf("program %s: %w", entry.NameTH, err)
		}
		programIDs[program.NameTH] = program.ID
		summary.Programs++
	}

	for _, entry := range file.Staff {
		if entry.Program == "" {
			continue
		}
		programID, err := lookup(programIDs, entry.Program, "program")
		if err != nil {
			return summary, fmt.Errorf("staff %s: %w", entry.Email, err)
		}
		userID := userIDs[strings.ToLower(strings.TrimSpace(entry.Email))]
		if _, err := s.staff.Update(ctx, userID, dto.UpdateStaffRequest{ProgramID: &programID}, nil); err != nil {
			return summary, fmt.Errorf("link %s to %s: %w", entry.Email, entry.Program, err)
		}
	}

	for _, entry := range file.Subjects {
		req := dto.SubjectRequest{Code: entry.Code, NameTH: entry.NameTH, NameEN: entry.NameEN, Credit: entry.Credit}
		if entry.Program != "" {
			programID, err := lookup(programIDs, entry.Program, "program")
			if err != nil {
				return summary, fmt.Errorf("subject %s: %w", entry.Code, err)
			}
			req.ProgramID = &programID
		}
		if entry.Responsible != "" {
			ownerID, err := lookup(userIDs, strings.ToLower(entry.Responsible), "responsible person")
			if err != nil {
				return summary, fmt.Errorf("subject %s: %w", entry.Code, err)
			}
			req.ResponsibleUserID = &ownerID
		}
		if _, err := s.subjects.Create(ctx, req, nil); err != nil {
			if appErrors.FromError(err).Code == appErrors.ErrDuplicate.Code {
				summary.Skipped++
				continue
			}
			return summary, fmt.Errorf("subject %s: %w", entry.Code, err)
		}
		summary.Subjects++
	}

	s.logger.Info("seed applied",
		zap.Int("staff", summary.Staff),
		zap.Int("programs", summary.Programs),
		zap.Int("subjects", summary.Subjects),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

func lookup(ids map[string]string, key, kind string) (string, error) {
	id, ok := ids[key]
	if !ok {
		return "", fmt.Errorf("unknown %s %q", kind, key)
	}
	return id, nil
}

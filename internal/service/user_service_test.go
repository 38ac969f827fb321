package service

import (
	"context"
	"testing"

	"droseonline/internal/dto"
	"droseonline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func buildUserSvc() (UserService, *stubUserRepo) {
	users := newStubUserRepo()
	svc := NewUserService(users, newStubCounterRepo(), func() *gorm.DB { return nil })
	return svc, users
}

func TestCreateUser_CodePrefixFollowsRole(t *testing.T) {
	svc, _ := buildUserSvc()
	ctx := context.Background()
	grade := "Grade 7"

	cases := []struct {
		role  string
		grade *string
		want  string
	}{
		{model.RoleTeacher, nil, "TE-000001"},
		{model.RoleStudent, &grade, "ST-000001"},
		{model.RoleAdmin, nil, "AD-000001"},
		{model.RoleTeacher, nil, "TE-000002"},
	}
	for i, tc := range cases {
		resp, err := svc.Create(ctx, dto.CreateUserRequest{
			FirstName:    "Test",
			LastName:     "User",
			Email:        string(rune('a'+i)) + "@droseonline.com",
			Password:     "password123",
			Role:         tc.role,
			CurrentGrade: tc.grade,
		})
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.Code)
	}
}

func TestCreateUser_StudentRequiresValidGrade(t *testing.T) {
	svc, _ := buildUserSvc()
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateUserRequest{
		FirstName: "No",
		LastName:  "Grade",
		Email:     "nograde@droseonline.com",
		Password:  "password123",
		Role:      model.RoleStudent,
	})
	assert.ErrorIs(t, err, ErrInvalidGrade)

	bad := "Kindergarten"
	_, err = svc.Create(ctx, dto.CreateUserRequest{
		FirstName:    "Bad",
		LastName:     "Grade",
		Email:        "badgrade@droseonline.com",
		Password:     "password123",
		Role:         model.RoleStudent,
		CurrentGrade: &bad,
	})
	assert.ErrorIs(t, err, ErrInvalidGrade)
}

func TestCreateUser_HashesPassword(t *testing.T) {
	svc, users := buildUserSvc()

	resp, err := svc.Create(context.Background(), dto.CreateUserRequest{
		FirstName: "Dina",
		LastName:  "Hassan",
		Email:     "dina@droseonline.com",
		Password:  "password123",
		Role:      model.RoleTeacher,
	})
	require.NoError(t, err)

	stored, err := users.FindByEmail(context.Background(), "dina@droseonline.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
	assert.Equal(t, "Dina Hassan", resp.FullName)
}

func TestUpdateUser_GradeOnlyForStudents(t *testing.T) {
	svc, users := buildUserSvc()
	ctx := context.Background()
	teacher := seedLoginUser(users, "teach@droseonline.com", "s3cret", true)

	grade := "Grade 9"
	_, err := svc.Update(ctx, teacher.ID, dto.UpdateUserRequest{CurrentGrade: &grade})
	assert.ErrorIs(t, err, ErrInvalidGrade)

	student := seedStudent(users, "karim", "Grade 8")
	resp, err := svc.Update(ctx, student.ID, dto.UpdateUserRequest{CurrentGrade: &grade})
	require.NoError(t, err)
	require.NotNil(t, resp.CurrentGrade)
	assert.Equal(t, "Grade 9", *resp.CurrentGrade)
}

func TestDeactivateUser(t *testing.T) {
	svc, users := buildUserSvc()
	user := seedLoginUser(users, "bye@droseonline.com", "s3cret", true)

	require.NoError(t, svc.Deactivate(context.Background(), user.ID))
	assert.False(t, user.IsActive)
}

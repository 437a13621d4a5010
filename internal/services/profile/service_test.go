package profile

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quickloan/internal/errors"
	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/repositories/memory"
	"quickloan/internal/services/notification"
	"quickloan/internal/storage"
)

func setup(t *testing.T) (Service, *repositories.Repositories, notification.Service) {
	t.Helper()
	repos := memory.NewStore().Repositories()
	notifier := notification.NewService(repos.Notifications, repos.Users, nil, notification.Config{})
	return NewService(repos, storage.NewLocalStore(t.TempDir()), notifier), repos, notifier
}

func createUser(t *testing.T, repos *repositories.Repositories, email string) uint {
	t.Helper()
	u := &models.User{Email: email, Password: "hash", IsActive: true}
	require.NoError(t, repos.Users.Create(context.Background(), u))
	return u.ID
}

func validProfile(idNumber string) ProfileInput {
	income := decimal.NewFromInt(45000)
	return ProfileInput{
		IDNumber:         idNumber,
		PhoneNumber:      "254712345678",
		DateOfBirth:      "1990-05-17",
		EmploymentStatus: models.EmploymentEmployed,
		MonthlyIncome:    &income,
		EmployerName:     "Acme",
	}
}

func TestSave_CreateThenUpdate(t *testing.T) {
	svc, repos, notifier := setup(t)
	ctx := context.Background()
	uid := createUser(t, repos, "jane@example.com")

	_, err := svc.Get(ctx, uid)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	p, created, err := svc.Save(ctx, uid, validProfile("12345678"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.DefaultProfilePicture, p.ProfilePicture)
	require.NotNil(t, p.DateOfBirth)
	assert.Equal(t, 1990, p.DateOfBirth.Year())

	in := validProfile("12345678")
	in.EmploymentStatus = models.EmploymentSelfEmployed
	p, created, err = svc.Save(ctx, uid, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, models.EmploymentSelfEmployed, p.EmploymentStatus)

	items, _, err := notifier.List(ctx, uid, 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, notification.TitleProfileUpdated, items[0].Title)
	assert.Equal(t, notification.TitleProfileCompleted, items[1].Title)
}

func TestSave_Validation(t *testing.T) {
	svc, repos, _ := setup(t)
	uid := createUser(t, repos, "jane@example.com")

	tests := []struct {
		name   string
		mutate func(*ProfileInput)
		field  string
	}{
		{"missing id number", func(in *ProfileInput) { in.IDNumber = "" }, "id_number"},
		{"missing phone", func(in *ProfileInput) { in.PhoneNumber = "  " }, "phone_number"},
		{"bad employment", func(in *ProfileInput) { in.EmploymentStatus = "retired" }, "employment_status"},
		{"bad date", func(in *ProfileInput) { in.DateOfBirth = "17/05/1990" }, "date_of_birth"},
		{"negative income", func(in *ProfileInput) {
			n := decimal.NewFromInt(-1)
			in.MonthlyIncome = &n
		}, "monthly_income"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validProfile("12345678")
			tt.mutate(&in)
			_, _, err := svc.Save(context.Background(), uid, in)
			de, ok := apperrors.As(err)
			require.True(t, ok, "expected domain error, got %v", err)
			assert.Equal(t, apperrors.KindValidation, de.Kind)
			assert.Contains(t, de.Fields, tt.field)
		})
	}
}

func TestSave_IDNumberTaken(t *testing.T) {
	svc, repos, _ := setup(t)
	ctx := context.Background()
	first := createUser(t, repos, "a@example.com")
	second := createUser(t, repos, "b@example.com")

	_, _, err := svc.Save(ctx, first, validProfile("12345678"))
	require.NoError(t, err)

	_, _, err = svc.Save(ctx, second, validProfile("12345678"))
	assert.ErrorIs(t, err, ErrIDNumberTaken)
}

func TestUpdateAccount(t *testing.T) {
	svc, repos, _ := setup(t)
	ctx := context.Background()
	uid := createUser(t, repos, "jane@example.com")
	createUser(t, repos, "taken@example.com")

	u, err := svc.UpdateAccount(ctx, uid, AccountInput{FirstName: "Jane", LastName: "Wanjiku", Email: " Jane.W@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "jane.w@example.com", u.Email)
	assert.Equal(t, "Jane Wanjiku", u.FullName())

	_, err = svc.UpdateAccount(ctx, uid, AccountInput{Email: "taken@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.UpdateAccount(ctx, uid, AccountInput{Email: "not-an-email"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestSetPicture(t *testing.T) {
	svc, repos, _ := setup(t)
	ctx := context.Background()
	uid := createUser(t, repos, "jane@example.com")

	upload := storage.Upload{Filename: "me.PNG", Size: 4, Content: strings.NewReader("fake")}
	_, err := svc.SetPicture(ctx, uid, upload)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, _, err = svc.Save(ctx, uid, validProfile("12345678"))
	require.NoError(t, err)

	p, err := svc.SetPicture(ctx, uid, storage.Upload{Filename: "me.PNG", Size: 4, Content: strings.NewReader("fake")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.ProfilePicture, storage.PrefixProfilePictures+"/"))
	assert.True(t, strings.HasSuffix(p.ProfilePicture, ".png"))

	_, err = svc.SetPicture(ctx, uid, storage.Upload{Filename: "me.bmp", Size: 4, Content: strings.NewReader("fake")})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.SetPicture(ctx, uid, storage.Upload{Filename: "me.jpg", Size: 3 * 1024 * 1024, Content: strings.NewReader("fake")})
	de, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "File size must be under 2MB", de.Message)
}

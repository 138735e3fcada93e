package services

import (
  "context"
  "fmt"
  "gorm.io/gorm"
  "github.com/google/uuid"
  "github.com/firelightacademy/protocols-backend/internal/logger"
  "github.com/firelightacademy/protocols-backend/internal/repos"
  "github.com/firelightacademy/protocols-backend/internal/requestdata"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

type UserService interface {
  GetMe(ctx context.Context) (*types.User, error)
  UploadAvatarImage(ctx context.Context, raw []byte) (*types.User, error)
}

type userService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  avatarService AvatarService
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, avatarService AvatarService) UserService {
  serviceLog := baseLog.With("service", "UserService")
  return &userService{
    db:            db,
    log:           serviceLog,
    userRepo:      userRepo,
    avatarService: avatarService,
  }
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, fmt.Errorf("Request data not set in context")
  }
  users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
  if err != nil {
    us.log.Error("GetMe failed", "error", err, "user_id", rd.UserID)
    return nil, fmt.Errorf("get user: %w", err)
  }
  if len(users) == 0 {
    return nil, fmt.Errorf("User not found")
  }
  return users[0], nil
}

func (us *userService) UploadAvatarImage(ctx context.Context, raw []byte) (*types.User, error) {
  user, err := us.GetMe(ctx)
  if err != nil {
    return nil, err
  }
  if us.avatarService == nil {
    return nil, fmt.Errorf("Avatar service not configured")
  }
  err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if aErr := us.avatarService.CreateAndStoreUserAvatarFromImage(ctx, tx, user, raw); aErr != nil {
      return aErr
    }
    return us.userRepo.UpdateFields(ctx, tx, user.ID, map[string]interface{}{
      "avatar_path": user.AvatarPath,
      "avatar_url":  user.AvatarURL,
    })
  })
  if err != nil {
    us.log.Error("UploadAvatarImage failed", "error", err, "user_id", user.ID)
    return nil, err
  }
  return user, nil
}

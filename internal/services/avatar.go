package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"gorm.io/gorm"

	"github.com/pathlight/pathlight-backend/internal/logger"
	"github.com/pathlight/pathlight-backend/internal/types"
	"github.com/pathlight/pathlight-backend/internal/utils"
)

const (
	avatarCanvasSize = 512
	avatarFinalSize  = 256
)

// avatarPalette: backgrounds readable with white initials.
var avatarPalette = []color.NRGBA{
	{R: 0x1F, G: 0x6F, B: 0xEB, A: 0xFF},
	{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF},
	{R: 0xDB, G: 0x27, B: 0x77, A: 0xFF},
	{R: 0x05, G: 0x96, B: 0x69, A: 0xFF},
	{R: 0xD9, G: 0x77, B: 0x06, A: 0xFF},
	{R: 0x0F, G: 0x76, B: 0x6E, A: 0xFF},
	{R: 0xB9, G: 0x1C, B: 0x1C, A: 0xFF},
}

// AvatarService renders an initials avatar at registration and stores it
// under the local media directory.
type AvatarService interface {
	CreateUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error
}

type avatarService struct {
	log      *logger.Logger
	mediaDir string
	baseURL  string
	fontFace font.Face
}

func NewAvatarService(log *logger.Logger) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	mediaDir := utils.GetEnv("AVATAR_MEDIA_DIR", "./media/avatars", log)
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create avatar media dir: %w", err)
	}
	baseURL := utils.GetEnv("AVATAR_BASE_URL", "/media/avatars", log)

	fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT"))
	if fontPath == "" {
		return nil, fmt.Errorf("env var AVATAR_FONT is empty")
	}
	face, err := loadFontFace(fontPath, 206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		log:      serviceLog,
		mediaDir: mediaDir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		fontFace: face,
	}, nil
}

func (as *avatarService) CreateUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error {
	if user == nil {
		return fmt.Errorf("no user given")
	}

	buf, err := as.renderInitialsAvatar(user.FirstName, user.LastName)
	if err != nil {
		return err
	}

	fileName := user.ID.String() + ".png"
	fullPath := filepath.Join(as.mediaDir, fileName)
	if err := os.WriteFile(fullPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("could not write avatar file: %w", err)
	}

	user.AvatarBucketKey = fileName
	user.AvatarURL = as.baseURL + "/" + fileName
	return nil
}

func (as *avatarService) renderInitialsAvatar(firstName, lastName string) (bytes.Buffer, error) {
	var out bytes.Buffer

	initials := avatarInitials(firstName, lastName)
	bg := avatarPalette[rand.Intn(len(avatarPalette))]

	dc := gg.NewContext(avatarCanvasSize, avatarCanvasSize)
	dc.SetColor(bg)
	dc.Clear()
	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(initials, avatarCanvasSize/2, avatarCanvasSize/2, 0.5, 0.5)

	// downscale for a softer edge than rendering small directly
	small := image.NewNRGBA(image.Rect(0, 0, avatarFinalSize, avatarFinalSize))
	draw.CatmullRom.Scale(small, small.Bounds(), dc.Image(), dc.Image().Bounds(), draw.Over, nil)

	if err := png.Encode(&out, small); err != nil {
		return out, fmt.Errorf("could not encode avatar png: %w", err)
	}
	return out, nil
}

func avatarInitials(firstName, lastName string) string {
	var b strings.Builder
	if first := strings.TrimSpace(firstName); first != "" {
		b.WriteString(strings.ToUpper(first[:1]))
	}
	if last := strings.TrimSpace(lastName); last != "" {
		b.WriteString(strings.ToUpper(last[:1]))
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

func loadFontFace(path string, points float64) (font.Face, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(parsed, &truetype.Options{Size: points}), nil
}

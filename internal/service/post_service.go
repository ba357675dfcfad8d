package service

import (
	"context"
	"errors"
	"fmt"

	"postfeed/internal/auth"
	"postfeed/internal/common"
	"postfeed/internal/feed"
	"postfeed/internal/logging"
	"postfeed/internal/models"
	"postfeed/internal/repository"
	"postfeed/internal/storage"
)

type PostService interface {
	Create(ctx context.Context, caller auth.User, content string, tags []string) (*models.Post, error)
	Get(ctx context.Context, postID string) (*models.Post, error)
	// List returns all posts, narrowed to those carrying tag when it is set.
	List(ctx context.Context, tag string) ([]models.Post, error)
	UpdateContent(ctx context.Context, caller auth.User, postID, content string) error
	Delete(ctx context.Context, caller auth.User, postID string) error
	AddImage(ctx context.Context, caller auth.User, postID, fileName string, data []byte) (*models.Post, error)
	RemoveImage(ctx context.Context, caller auth.User, postID string, index int) (*models.Post, error)
}

type postService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	storage  storage.Storage
	logger   logging.Logger
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, storage storage.Storage, logger logging.Logger) PostService {
	return &postService{
		postRepo: postRepo,
		userRepo: userRepo,
		storage:  storage,
		logger:   logger.With("module", "post_service"),
	}
}

func (p *postService) Create(ctx context.Context, caller auth.User, content string, tags []string) (*models.Post, error) {
	if caller.ID == "" {
		return nil, common.ErrUnauthenticated
	}

	author, err := p.userRepo.GetByID(ctx, caller.ID)
	if errors.Is(err, common.ErrNotFound) {
		author = &models.Identity{ID: caller.ID, Name: caller.Name, Email: caller.Email}
	} else if err != nil {
		return nil, err
	}

	post := &models.Post{
		Author:  *author,
		Content: content,
		Tags:    models.NormalizeTags(tags),
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	p.logger.Info(ctx, "post created", "post_id", post.ID, "author", caller.ID)

	return post, nil
}

func (p *postService) Get(ctx context.Context, postID string) (*models.Post, error) {
	return p.postRepo.GetByID(ctx, postID)
}

func (p *postService) List(ctx context.Context, tag string) ([]models.Post, error) {
	posts, err := p.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return feed.Filter(posts, tag), nil
}

// authorize resolves the post and checks that caller owns it. Checks run in
// order: caller present, post exists, caller is the author.
func (p *postService) authorize(ctx context.Context, caller auth.User, postID string) (*models.Post, error) {
	if caller.ID == "" {
		return nil, common.ErrUnauthenticated
	}

	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.OwnedBy(caller.ID) {
		return nil, fmt.Errorf("post %s: %w", postID, common.ErrForbidden)
	}

	return post, nil
}

func (p *postService) UpdateContent(ctx context.Context, caller auth.User, postID, content string) error {
	if _, err := p.authorize(ctx, caller, postID); err != nil {
		return err
	}

	return p.postRepo.UpdateContent(ctx, postID, content)
}

func (p *postService) Delete(ctx context.Context, caller auth.User, postID string) error {
	post, err := p.authorize(ctx, caller, postID)
	if err != nil {
		return err
	}

	if err := p.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	for _, ref := range post.Images {
		p.deleteObject(ctx, ref)
	}

	p.logger.Info(ctx, "post deleted", "post_id", postID, "author", caller.ID)

	return nil
}

func (p *postService) AddImage(ctx context.Context, caller auth.User, postID, fileName string, data []byte) (*models.Post, error) {
	post, err := p.authorize(ctx, caller, postID)
	if err != nil {
		return nil, err
	}

	objectName, imageURL, err := p.storage.UploadImage(ctx, storage.PrefixPosts, postID, fileName, data)
	if err != nil {
		return nil, err
	}

	if err := p.postRepo.AppendImage(ctx, postID, imageURL); err != nil {
		if delErr := p.storage.DeleteImage(ctx, objectName); delErr != nil {
			p.logger.Warn(ctx, "orphaned image object", "object", objectName, "error", delErr)
		}
		return nil, err
	}

	post.Images = append(post.Images, imageURL)
	return post, nil
}

func (p *postService) RemoveImage(ctx context.Context, caller auth.User, postID string, index int) (*models.Post, error) {
	post, err := p.authorize(ctx, caller, postID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(post.Images) {
		return nil, fmt.Errorf("image %d of post %s: %w", index, postID, common.ErrNotFound)
	}

	ref := post.Images[index]
	if err := p.postRepo.RemoveImage(ctx, postID, ref); err != nil {
		return nil, err
	}

	p.deleteObject(ctx, ref)

	post.Images = append(post.Images[:index:index], post.Images[index+1:]...)
	return post, nil
}

// deleteObject removes a stored image. Failures only leave an orphan object.
func (p *postService) deleteObject(ctx context.Context, ref string) {
	name, ok := p.storage.ObjectName(ref)
	if !ok {
		return
	}
	if err := p.storage.DeleteImage(ctx, name); err != nil {
		p.logger.Warn(ctx, "failed to delete image object", "object", name, "error", err)
	}
}

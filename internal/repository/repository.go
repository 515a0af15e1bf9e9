package repository

import (
	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	db      *pgxpool.Pool
	Gallery GalleryRepository
	Photo   PhotoRepository
	Event   EventRepository
	User    UserRepository
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db:      db,
		Gallery: NewGalleryRepo(db),
		Photo:   NewPhotoRepo(db),
		Event:   NewEventRepo(db),
		User:    NewUserRepo(db),
	}
}

func (r *Repository) Close() {
	r.db.Close()
}

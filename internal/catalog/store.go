// Package catalog stores and serves the reference tables: ranges, the nuts
// priced within them, and screw diameter/length pairs.
package catalog

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"argip-api/internal/apperr"
	"argip-api/internal/models"
	"argip-api/internal/storage"
)

const (
	msgRangeNotFound       = "Range not found"
	msgNutNotFound         = "Nut not found"
	msgScrewLengthNotFound = "Screw length not found"
	msgOdBelowDo           = "Value 'od' must be less than 'do'"
	msgScrewExists         = "This screw (diameter + length combination) already exists"
)

type RangeInput struct {
	Nazwa string
	Od    float64
	Do    float64
}

// RangePatch holds the fields an update supplies; nil means unchanged.
type RangePatch struct {
	Nazwa *string
	Od    *float64
	Do    *float64
}

type NutInput struct {
	IDZakresu uint
	Nazwa     string
	Srednica  float64
	Cena      models.Price
}

type NutPatch struct {
	IDZakresu *uint
	Nazwa     *string
	Srednica  *float64
	Cena      *models.Price
}

type ScrewLengthInput struct {
	Srednica float64
	Dlugosc  float64
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func checkRange(od, do float64) error {
	if od >= do {
		return apperr.Validation(msgOdBelowDo)
	}
	return nil
}

// storageErr classifies a driver error, falling back to a storage failure.
func storageErr(err error, notFound string) error {
	var appErr *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case storage.IsNotFound(err):
		return apperr.NotFound(notFound)
	default:
		return apperr.Storage(err)
	}
}

// Ranges

func (s *Store) ListRanges(ctx context.Context) ([]models.Range, error) {
	ranges := make([]models.Range, 0)
	if err := s.db.WithContext(ctx).Order("id").Find(&ranges).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return ranges, nil
}

func (s *Store) GetRange(ctx context.Context, id uint) (*models.Range, error) {
	return getRange(s.db.WithContext(ctx), id)
}

func getRange(db *gorm.DB, id uint) (*models.Range, error) {
	var r models.Range
	if err := db.Take(&r, id).Error; err != nil {
		return nil, storageErr(err, msgRangeNotFound)
	}
	return &r, nil
}

func (s *Store) CreateRange(ctx context.Context, in RangeInput) (*models.Range, error) {
	if err := checkRange(in.Od, in.Do); err != nil {
		return nil, err
	}
	r := models.Range{Nazwa: in.Nazwa, Od: in.Od, Do: in.Do}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	logrus.WithField("range_id", r.ID).Info("range created")
	return &r, nil
}

// UpdateRange merges p into the stored range and re-checks od < do against
// the merged values. Nothing is written when the check fails.
func (s *Store) UpdateRange(ctx context.Context, id uint, p RangePatch) (*models.Range, error) {
	var updated *models.Range
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := getRange(tx, id)
		if err != nil {
			return err
		}
		if p.Nazwa != nil {
			r.Nazwa = *p.Nazwa
		}
		if p.Od != nil {
			r.Od = *p.Od
		}
		if p.Do != nil {
			r.Do = *p.Do
		}
		if err := checkRange(r.Od, r.Do); err != nil {
			return err
		}
		if err := tx.Model(r).Select("nazwa", "od", "do").Updates(r).Error; err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, storageErr(err, msgRangeNotFound)
	}
	return updated, nil
}

// DeleteRange removes the range and every nut that references it in one
// transaction.
func (s *Store) DeleteRange(ctx context.Context, id uint) error {
	var removedNuts int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getRange(tx, id); err != nil {
			return err
		}
		res := tx.Where("id_zakresu = ?", id).Delete(&models.Nut{})
		if res.Error != nil {
			return res.Error
		}
		removedNuts = res.RowsAffected
		return tx.Delete(&models.Range{}, id).Error
	})
	if err != nil {
		return storageErr(err, msgRangeNotFound)
	}
	logrus.WithFields(logrus.Fields{"range_id": id, "nuts_removed": removedNuts}).Info("range deleted")
	return nil
}

// Nuts

// ListNuts returns all nuts, or only those of one range when rangeID is set.
func (s *Store) ListNuts(ctx context.Context, rangeID *uint) ([]models.Nut, error) {
	nuts := make([]models.Nut, 0)
	q := s.db.WithContext(ctx).Order("id")
	if rangeID != nil {
		q = q.Where("id_zakresu = ?", *rangeID)
	}
	if err := q.Find(&nuts).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return nuts, nil
}

func (s *Store) GetNut(ctx context.Context, id uint) (*models.Nut, error) {
	return getNut(s.db.WithContext(ctx), id)
}

func getNut(db *gorm.DB, id uint) (*models.Nut, error) {
	var n models.Nut
	if err := db.Take(&n, id).Error; err != nil {
		return nil, storageErr(err, msgNutNotFound)
	}
	return &n, nil
}

func (s *Store) CreateNut(ctx context.Context, in NutInput) (*models.Nut, error) {
	n := models.Nut{
		IDZakresu: in.IDZakresu,
		Nazwa:     in.Nazwa,
		Srednica:  in.Srednica,
		Cena:      in.Cena,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getRange(tx, in.IDZakresu); err != nil {
			return err
		}
		return tx.Create(&n).Error
	})
	if err != nil {
		return nil, nutWriteErr(err)
	}
	logrus.WithFields(logrus.Fields{"nut_id": n.ID, "range_id": n.IDZakresu}).Info("nut created")
	return &n, nil
}

// UpdateNut merges p into the stored nut. A new id_zakresu must name an
// existing range.
func (s *Store) UpdateNut(ctx context.Context, id uint, p NutPatch) (*models.Nut, error) {
	var updated *models.Nut
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := getNut(tx, id)
		if err != nil {
			return err
		}
		if p.IDZakresu != nil && *p.IDZakresu != n.IDZakresu {
			if _, err := getRange(tx, *p.IDZakresu); err != nil {
				return err
			}
			n.IDZakresu = *p.IDZakresu
		}
		if p.Nazwa != nil {
			n.Nazwa = *p.Nazwa
		}
		if p.Srednica != nil {
			n.Srednica = *p.Srednica
		}
		if p.Cena != nil {
			n.Cena = *p.Cena
		}
		if err := tx.Model(n).Select("id_zakresu", "nazwa", "srednica", "cena").Updates(n).Error; err != nil {
			return err
		}
		updated = n
		return nil
	})
	if err != nil {
		return nil, nutWriteErr(err)
	}
	return updated, nil
}

// nutWriteErr maps a range that vanished between check and commit onto the
// same not-found the pre-check reports.
func nutWriteErr(err error) error {
	if storage.IsForeignKeyViolation(err) {
		return apperr.NotFound(msgRangeNotFound)
	}
	return storageErr(err, msgNutNotFound)
}

func (s *Store) DeleteNut(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Nut{}, id)
	if res.Error != nil {
		return apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(msgNutNotFound)
	}
	return nil
}

// Screw lengths

// ListScrewLengths returns all pairs ordered by diameter, then length.
func (s *Store) ListScrewLengths(ctx context.Context) ([]models.ScrewLength, error) {
	screws := make([]models.ScrewLength, 0)
	if err := s.db.WithContext(ctx).Order("srednica").Order("dlugosc").Find(&screws).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return screws, nil
}

func (s *Store) CreateScrewLength(ctx context.Context, in ScrewLengthInput) (*models.ScrewLength, error) {
	sl := models.ScrewLength{Srednica: in.Srednica, Dlugosc: in.Dlugosc}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ScrewLength{}).
			Where("srednica = ? AND dlugosc = ?", in.Srednica, in.Dlugosc).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict(msgScrewExists)
		}
		return tx.Create(&sl).Error
	})
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, apperr.Conflict(msgScrewExists)
		}
		return nil, storageErr(err, msgScrewLengthNotFound)
	}
	return &sl, nil
}

func (s *Store) DeleteScrewLength(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.ScrewLength{}, id)
	if res.Error != nil {
		return apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(msgScrewLengthNotFound)
	}
	return nil
}

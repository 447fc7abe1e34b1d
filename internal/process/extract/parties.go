package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"procsync/internal/eproc"
	"procsync/internal/process/models"
	"procsync/internal/process/store"
)

// personDateLayout is the registry's date-only format for births and deaths.
const personDateLayout = "20060102"

// Parties rebuilds the party set of a process from the raw pole tree. This
// is a full replace, never a merge: the source provides no party identifier
// stable enough to diff against the previous set.
type Parties struct {
	parties store.PartyStore
	logger  *slog.Logger
}

func NewParties(parties store.PartyStore, logger *slog.Logger) *Parties {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parties{parties: parties, logger: logger}
}

// Extract deletes every existing party for the process and rebuilds from the
// snapshot, returning how many parties were written. A malformed party is
// fatal to that party only.
func (p *Parties) Extract(ctx context.Context, proc *models.Process, snap *models.RawSnapshot) (int, error) {
	if err := p.parties.DeleteByProcess(ctx, proc.Number); err != nil {
		return 0, fmt.Errorf("clear parties for %s: %w", proc.Number, err)
	}

	written := 0
	for _, pole := range snap.Payload.BasicData.Poles {
		for _, raw := range pole.Parties {
			party, err := p.toParty(proc.Number, pole.Pole, raw)
			if err != nil {
				p.logger.WarnContext(ctx, "skipping malformed party",
					"process", proc.Number,
					"pole", pole.Pole,
					"error", err,
				)
				continue
			}
			if err := p.parties.Add(ctx, party); err != nil {
				return written, fmt.Errorf("add party for %s: %w", proc.Number, err)
			}
			written++
		}
	}
	return written, nil
}

func (p *Parties) toParty(number, pole string, raw eproc.RawParty) (*models.Party, error) {
	birthDate, err := parsePersonDate(raw.Person.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("parse birth date %q: %w", raw.Person.BirthDate, err)
	}
	deathDate, err := parsePersonDate(raw.Person.DeathDate)
	if err != nil {
		return nil, fmt.Errorf("parse death date %q: %w", raw.Person.DeathDate, err)
	}

	party := &models.Party{
		ProcessNumber: number,
		Pole:          pole,
		Person: models.Person{
			Type:            raw.Person.Type,
			PrimaryDocument: raw.Person.PrimaryDocument,
			Name:            raw.Person.Name,
			FatherName:      raw.Person.FatherName,
			MotherName:      raw.Person.MotherName,
			BirthDate:       birthDate,
			DeathDate:       deathDate,
			Sex:             raw.Person.Sex,
			BirthCity:       raw.Person.BirthCity,
			BirthState:      raw.Person.BirthState,
			Nationality:     raw.Person.Nationality,
		},
	}

	for _, addr := range raw.Person.Addresses {
		party.Person.Addresses = append(party.Person.Addresses, models.Address{
			PostalCode: addr.PostalCode,
			Street:     addr.Street,
			Number:     addr.Number,
			Complement: addr.Complement,
			District:   addr.District,
			City:       addr.City,
			State:      addr.State,
			Country:    addr.Country,
		})
	}

	for _, lawyer := range raw.Lawyers {
		party.Lawyers = append(party.Lawyers, models.Lawyer{
			Name:               lawyer.Name,
			PrimaryDocument:    lawyer.PrimaryDocument,
			IdentityNumber:     lawyer.IdentityNumber,
			RepresentativeType: lawyer.RepresentativeType,
		})
	}

	return party, nil
}

func parsePersonDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(personDateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

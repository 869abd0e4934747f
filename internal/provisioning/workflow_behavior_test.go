package provisioning_test

import (
	"bytes"
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/imamik/apmconsole/internal/device"
	"github.com/imamik/apmconsole/internal/order"
	"github.com/imamik/apmconsole/internal/provisioning"
	apmtesting "github.com/imamik/apmconsole/internal/testing"
	"github.com/imamik/apmconsole/internal/ui/console"
)

var _ = Describe("Provisioning session", func() {
	var (
		ctx     context.Context
		backend *apmtesting.MockBackend
		dev     *device.Sim
		out     *bytes.Buffer
		ctrl    *provisioning.Controller
		session *provisioning.Session
	)

	action := func(title string) provisioning.Action {
		for _, a := range ctrl.Actions() {
			if a.Title() == title {
				return a
			}
		}
		Fail("no action titled " + title)
		return nil
	}

	BeforeEach(func() {
		ctx = context.Background()
		backend = &apmtesting.MockBackend{}
		dev = device.NewSim()
		out = &bytes.Buffer{}
		ctrl = provisioning.NewController(backend, dev, console.New(out, true),
			console.NewLinePrompter(strings.NewReader(""), &bytes.Buffer{}),
			provisioning.WithInvalidSelectionPause(0))

		session = provisioning.NewSession()
		session.SetIdentity("operator", "tok")
		session.SetOrderNumber("123")
		session.SetOrderYear("2022")
		session.DecimalNumber = "APM.406233.001"

		backend.On("SearchOrders", mock.Anything, "tok", "123").Return([]order.Order{
			{ID: "101", Number: 123, CreatedAt: "2021-03-01"},
			{ID: "102", Number: 123, CreatedAt: "2022-05-11"},
		}, nil)
	})

	Context("when the backend issues a number", func() {
		BeforeEach(func() {
			backend.On("CreateProduct", mock.Anything, "tok", order.ID("102"), "APM.406233.001").
				Return("2210000001", nil).Once()
		})

		It("returns to idle after a verified write", func() {
			Expect(action("Create and write factory number").Execute(ctx, session)).To(Succeed())
			Expect(session.State()).To(Equal(provisioning.Idle))
			Expect(session.History).To(HaveLen(1))
		})

		Context("and the readback does not match", func() {
			BeforeEach(func() {
				dev.CorruptWrites(func(v []uint32) []uint32 { v[0] ^= 0x0100; return v })
				err := action("Create and write factory number").Execute(ctx, session)
				Expect(provisioning.IsVerification(err)).To(BeTrue())
			})

			It("keeps the issued number pending", func() {
				pending, ok := session.Pending()
				Expect(ok).To(BeTrue())
				Expect(pending).To(Equal("2210000001"))
				Expect(session.State()).To(Equal(provisioning.PendingWrite))
			})

			It("refuses to issue a second number", func() {
				err := action("Create and write factory number").Execute(ctx, session)
				Expect(errors.Is(err, provisioning.ErrPendingWrite)).To(BeTrue())
				backend.AssertNumberOfCalls(GinkgoT(), "CreateProduct", 1)
			})

			It("writes the same number again on retry", func() {
				dev.CorruptWrites(nil)
				Expect(action("Retry writing the last factory number").Execute(ctx, session)).To(Succeed())
				Expect(session.State()).To(Equal(provisioning.Idle))
				Expect(session.History[0].FactoryNumber).To(Equal("2210000001"))
				backend.AssertNumberOfCalls(GinkgoT(), "CreateProduct", 1)
			})

			It("keeps order edits independent of the pending number", func() {
				session.SetOrderNumber("77")
				session.DecimalNumber = "APM.1"
				Expect(session.State()).To(Equal(provisioning.PendingWrite))
			})

			It("records the retried number under the order it was issued for", func() {
				session.SetOrderNumber("999")
				session.DecimalNumber = "OTHER.000"
				dev.CorruptWrites(nil)

				Expect(action("Retry writing the last factory number").Execute(ctx, session)).To(Succeed())

				Expect(session.History).To(HaveLen(1))
				rec := session.History[0]
				Expect(rec.FactoryNumber).To(Equal("2210000001"))
				Expect(rec.OrderNumber).To(Equal("123"))
				Expect(rec.OrderYear).To(Equal("2022"))
				Expect(rec.OrderID).To(Equal(order.ID("102")))
				Expect(rec.DecimalNumber).To(Equal("APM.406233.001"))
				Expect(rec.Operator).To(Equal("operator"))
			})
		})
	})

	Context("when retrying against an unchanged device", func() {
		It("converges without contacting the backend", func() {
			backend.On("CreateProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return("2210000001", nil).Once()
			dev.FailReads(errors.New("crc error"))
			Expect(action("Create and write factory number").Execute(ctx, session)).NotTo(Succeed())

			dev.FailReads(nil)
			Expect(action("Retry writing the last factory number").Execute(ctx, session)).To(Succeed())
			Expect(action("Retry writing the last factory number").Execute(ctx, session)).To(Succeed())

			Expect(session.State()).To(Equal(provisioning.Idle))
			Expect(session.History).To(HaveLen(1))
			backend.AssertNumberOfCalls(GinkgoT(), "CreateProduct", 1)
		})
	})

	Context("when the search finds no orders", func() {
		It("fails with order not found and passes no id downstream", func() {
			session.SetOrderNumber("999")
			backend.On("SearchOrders", mock.Anything, "tok", "999").Return([]order.Order{}, nil)

			err := action("Create and write factory number").Execute(ctx, session)

			Expect(errors.Is(err, order.ErrOrderNotFound)).To(BeTrue())
			Expect(session.OrderID).To(BeEmpty())
			backend.AssertNotCalled(GinkgoT(), "CreateProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	})
})
